// Package catalog defines the asset record model and the dotted-key
// identity scheme that gives every discovered asset a stable,
// human-readable identifier.
//
// A key is built from the source kind, source name, namespace and the
// asset path inside the namespace, each segment normalized to lowercase
// alphanumerics with underscore separators:
//
//	mod.create.create.textures.item.brass_ingot.png
//
// Keys are unique within one scan. When two assets normalize to the same
// base key the later ones receive a ".dupN" suffix with N starting at 1.
package catalog
