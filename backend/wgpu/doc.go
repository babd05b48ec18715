// Package wgpu provides the GPU submission backend for flexbatch on top of
// gogpu/wgpu's HAL layer.
//
// The package has three pieces:
//
//   - [Device]: adapter selection and logical device bring-up, either
//     self-owned ([Open]) or borrowed from a host application
//     ([FromProvider]).
//   - [Textures]: the registry that mints flexbatch.TextureID handles for
//     hal texture views. Handles are non-owning; releasing an ID never
//     destroys the underlying texture.
//   - [Renderer]: a render.Queue implementation that turns each flush into
//     one indexed draw call: upload vertex and index data, bind the flush's
//     texture, record a render pass, submit, and fence-wait.
//
// All GPU work happens here; the flexbatch root and render packages never
// touch the HAL.
package wgpu
