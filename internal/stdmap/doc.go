// Package stdmap resolves fully-qualified source-library call names to
// their target-language equivalents: the replacement spelling plus any
// use-path it requires. A built-in default table ships embedded; callers
// may layer YAML overlays on top to extend or override it. A lookup miss
// is an unmapped call, which excludes the calling function from output.
package stdmap
