//go:build art_sanitizer

package art

// bagCapConst is the sanitizer-mode deferred-destructor bag capacity
// (spec.md §6 "BAG_CAP = 64 (4 under sanitizer)").
const bagCapConst = 4
