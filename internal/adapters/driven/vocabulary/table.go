package vocabulary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// table is a TSV file with a header row. Columns are addressed by name.
type table struct {
	header map[string]int
	rows   [][]string
}

// col returns a row's value for a named column, or "".
func (t *table) col(row []string, name string) string {
	i, ok := t.header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// cols returns the values of every column whose name starts with prefix,
// so "synonyms" also collects "synonyms_other".
func (t *table) cols(row []string, prefix string) []string {
	var out []string
	for name, i := range t.header {
		if strings.HasPrefix(name, prefix) && i < len(row) {
			out = append(out, row[i])
		}
	}
	return out
}

// require checks that every named column is present.
func (t *table) require(names ...string) error {
	for _, n := range names {
		if _, ok := t.header[n]; !ok {
			return fmt.Errorf("missing column %q", n)
		}
	}
	return nil
}

// openTable reads path, transparently decompressing .xz files. The raw
// file bytes are copied to sum.
func openTable(path string, sum io.Writer) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = io.TeeReader(f, sum)
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		r = xr
	}
	return readTable(r)
}

func readTable(r io.Reader) (*table, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	t := &table{header: make(map[string]int)}

	first := true
	for {
		line, err := br.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			fields := strings.Split(line, "\t")
			if first {
				for i, name := range fields {
					t.header[strings.ToLower(strings.TrimSpace(name))] = i
				}
				first = false
			} else {
				t.rows = append(t.rows, fields)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if first {
		return nil, fmt.Errorf("empty file")
	}
	return t, nil
}

// readLines returns the non-empty lines of path, lower-cased.
func readLines(path string, sum io.Writer) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]bool)
	sc := bufio.NewScanner(io.TeeReader(f, sum))
	for sc.Scan() {
		if w := strings.ToLower(strings.TrimSpace(sc.Text())); w != "" {
			out[w] = true
		}
	}
	return out, sc.Err()
}
