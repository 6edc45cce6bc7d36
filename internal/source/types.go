package source

// FileID identifies a source file within a FileTable.
//
// IDs are dense and 0-based: the first registered file gets ID 0, so a
// zero-value Span points at the start of the first file.
type FileID uint32
