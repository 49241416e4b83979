// Package imagegen provides the Backend implementations that run the
// inpainting model behind sdruntime.Pipeline.
//
// Three backends are available, selected by PAINT_BACKEND:
//
//   - diffusers: an HTTP JSON bridge to a diffusers worker process that hosts
//     the Stable Diffusion + ControlNet inpaint pipeline
//   - openai: the OpenAI image edit endpoint (DALL-E 2), used when no local
//     GPU worker is available
//   - null: returns the prepared input unchanged, for smoke tests
//
// Errors from a backend are reported as *GenerationError so the HTTP layer
// can tell transient failures (503) from hard ones (502).
package imagegen
