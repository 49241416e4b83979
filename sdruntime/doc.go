// Package sdruntime is the adapter in front of the external Stable Diffusion +
// ControlNet inpaint model.
//
// A Pipeline normalizes the input size, resamples image and mask to it, builds
// the ControlNet inpaint condition, appends the fixed negative prompt block and
// hands a Request to a Backend. The model itself lives behind Backend and is
// never implemented here.
//
// # Configuration
//
// Run parameters travel with every call as an immutable Config value:
//
//	cfg := sdruntime.DefaultConfig().Update(0.8, 7.5, 50, nil)
//	res, err := pipeline.Run(ctx, cfg, img, mask, "a red door", "")
//
// Nothing about a run is stored on the Pipeline, so concurrent callers cannot
// observe each other's parameters.
//
// # Concurrency
//
// The Backend is created on first use (once per Pipeline). Runs are admitted
// through a SlotPool of fixed size; callers queue until a slot frees, their
// context ends, or the acquire timeout passes (ErrAcquireTimeout).
//
// # Debug output
//
// When a debug directory is configured the pipeline writes
// mask_visualization.png and control_image.png for each run. Without it no
// files are written.
package sdruntime
