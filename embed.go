package schemer

import (
	"fmt"
	"io/fs"
)

// FSDefinitions receives a filesystem (such as an embed.FS) and extracts all
// files matching the provided glob as Definitions, with the filename
// (without extension) being the default table name.
//
// Example usage:
//
//	FSDefinitions(embeddedFS, "schema/*.yml")
func FSDefinitions(filesystem fs.FS, glob string) (definitions []*Definition, err error) {
	definitions = make([]*Definition, 0)

	entries, err := fs.Glob(filesystem, glob)
	if err != nil {
		return definitions, fmt.Errorf("failed to process glob '%s' in embed.FS: %w", glob, err)
	}

	for _, entry := range entries {
		data, err := fs.ReadFile(filesystem, entry)
		if err != nil {
			return definitions, err
		}
		definition, err := ParseDefinition(TableNameFromFilename(entry), data)
		if err != nil {
			return definitions, err
		}
		definitions = append(definitions, definition)
	}
	sortDefinitions(definitions)
	return definitions, nil
}
