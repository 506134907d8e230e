//go:build !art_sanitizer

package art

// bagCapConst is the default deferred-destructor bag capacity (spec.md §6
// "BAG_CAP = 64"). Build with -tags art_sanitizer for the smaller capacity
// (4), which makes bags seal (and therefore collection run) far more often
// than 64 retirements would allow in a short test run.
const bagCapConst = 64
