package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Entry is one file to include in an archive.
type Entry struct {
	Filename string
	Data     []byte
}

// Archive packs the entries into an in-memory zip. Entries without data are
// skipped; duplicate filenames get a numeric suffix so nothing is silently
// overwritten.
func Archive(entries []Entry) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int)
	for _, entry := range entries {
		if len(entry.Data) == 0 || entry.Filename == "" {
			continue
		}
		name := entry.Filename
		if n := seen[entry.Filename]; n > 0 {
			name = dedupe(name, n)
		}
		seen[entry.Filename]++
		w, err := zw.Create(name)
		if err != nil {
			continue
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func dedupe(name string, n int) string {
	if dot := strings.LastIndex(name, "."); dot > 0 {
		return fmt.Sprintf("%s_%d%s", name[:dot], n, name[dot:])
	}
	return fmt.Sprintf("%s_%d", name, n)
}
