// Package media3d is a retained-mode 3D object model: model groups,
// geometry models with indexed triangle meshes, layered materials with
// colour and image brushes, affine transforms, lights and cameras.
//
// Values are built by the converter and walked by the exporter and the
// preview rasterizer; nothing here renders.
package media3d
