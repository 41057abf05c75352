package schemer

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// definitionFile is the YAML layout of a declaration file:
//
//	table: people
//	columns:
//	  - age: integer
//	  - name
//	  - bio: varchar(500)
//
// columns may also be a mapping of name to type.
type definitionFile struct {
	Table   string    `yaml:"table"`
	Columns yaml.Node `yaml:"columns"`
}

// TableNameFromFilename removes directory paths and extensions
// from the filename to make a default table name
func TableNameFromFilename(filename string) string {
	return strings.TrimSuffix(path.Base(filepath.ToSlash(filename)), path.Ext(filename))
}

// ParseDefinition builds a Definition from a YAML declaration document. The
// name is used as the table name when the document doesn't set one.
func ParseDefinition(name string, data []byte) (*Definition, error) {
	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse declaration '%s': %w", name, err)
	}
	if file.Table == "" {
		file.Table = name
	}

	columns, err := columnsFromNode(&file.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to parse columns of '%s': %w", file.Table, err)
	}
	return Declare(file.Table, columns)
}

func columnsFromNode(node *yaml.Node) (Columns, error) {
	columns := make(Columns, 0, len(node.Content))
	switch node.Kind {
	case 0:
		// No columns key at all
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			value := node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return columns, fmt.Errorf("%w: line %d", ErrInvalidEntry, value.Line)
			}
			columns = append(columns, Column{
				Name: node.Content[i].Value,
				Type: ParseType(value.Value),
			})
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				columns = append(columns, Column{Name: item.Value, Type: String})
			case yaml.MappingNode:
				more, err := columnsFromNode(item)
				if err != nil {
					return columns, err
				}
				columns = append(columns, more...)
			default:
				return columns, fmt.Errorf("%w: line %d", ErrInvalidEntry, item.Line)
			}
		}
	default:
		return columns, fmt.Errorf("%w: line %d", ErrInvalidEntry, node.Line)
	}
	return columns, nil
}

// DefinitionsFromDirectoryPath retrieves a slice of Definitions from the
// contents of the directory. Only .yml and .yaml files are read. The
// Definitions are sorted by table name.
func DefinitionsFromDirectoryPath(dirPath string) (definitions []*Definition, err error) {
	definitions = make([]*Definition, 0)
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		filenames, err := filepath.Glob(filepath.Join(dirPath, pattern))
		if err != nil {
			return definitions, err
		}
		for _, filename := range filenames {
			definition, err := DefinitionFromFilePath(filename)
			if err != nil {
				return definitions, err
			}
			definitions = append(definitions, definition)
		}
	}
	sortDefinitions(definitions)
	return definitions, nil
}

// DefinitionFromFilePath creates a Definition from a path on disk
func DefinitionFromFilePath(filename string) (*Definition, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration from '%s': %w", filename, err)
	}
	return ParseDefinition(TableNameFromFilename(filename), contents)
}

// File wraps the standard library io.Read and os.File.Name methods
type File interface {
	Name() string
	Read(b []byte) (n int, err error)
}

// DefinitionFromFile builds a Definition by reading from an open File-like
// object. The default table name is based on the file's name. The file
// will *not* be closed after being read.
func DefinitionFromFile(file File) (*Definition, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return ParseDefinition(TableNameFromFilename(file.Name()), content)
}

func sortDefinitions(definitions []*Definition) {
	sort.SliceStable(definitions, func(i, j int) bool {
		return definitions[i].Table < definitions[j].Table
	})
}
