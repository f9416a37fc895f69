// Package docs resolves and inspects the key documentation files that get
// embedded in a context snapshot.
//
// Resolution order for a logical document name is fixed:
//  1. Exact filename match directly inside the contracts directory.
//  2. First match of a recursive walk under the contracts directory.
//  3. Exact filename match inside the repository root.
//
// A miss is not an error; the report records it and moves on.
package docs

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Document describes one key documentation file as it appears in the report.
// Path is empty when the name could not be resolved. Err carries the first
// read failure after successful resolution; it degrades this document only.
type Document struct {
	Name    string
	Path    string
	Hash    string
	Lines   int
	Preview string
	Err     error
}

// Resolve locates name following the fixed resolution order and returns
// the absolute path of the first hit. Both directories are probed
// read-only; contractsDir may be empty.
func Resolve(name, contractsDir, root string) (string, bool) {
	if contractsDir != "" {
		direct := filepath.Join(contractsDir, name)
		if isRegular(direct) {
			return absOrSelf(direct), true
		}
		if found := findInTree(contractsDir, name); found != "" {
			return found, true
		}
	}

	fallback := filepath.Join(root, name)
	if isRegular(fallback) {
		return absOrSelf(fallback), true
	}

	return "", false
}

// Load resolves name and, on a hit, gathers content hash, line count, and
// the first previewLines lines. Read failures are recorded on the returned
// Document instead of aborting.
func Load(name, contractsDir, root string, previewLines int) Document {
	doc := Document{Name: name}

	path, ok := Resolve(name, contractsDir, root)
	if !ok {
		return doc
	}
	doc.Path = path

	hash, err := HashFile(path)
	if err != nil {
		doc.Err = err
		return doc
	}
	doc.Hash = hash

	lines, err := CountLines(path)
	if err != nil {
		doc.Err = err
		return doc
	}
	doc.Lines = lines

	preview, err := Preview(path, previewLines)
	if err != nil {
		doc.Err = err
		return doc
	}
	doc.Preview = preview

	return doc
}

// findInTree walks the tree under root and returns the absolute path of
// the first entry whose base name equals name. The walk order is lexical,
// so repeated runs resolve to the same file.
func findInTree(root, name string) string {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, keep probing the rest.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == name {
			found = absOrSelf(path)
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return ""
	}
	return found
}

// HashFile returns the hex-encoded sha256 of the file content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CountLines returns the number of lines in the file. A trailing fragment
// without a newline counts as a line.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			count++
		}
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Preview returns the first n lines of the file joined with newlines,
// without trailing line terminators.
func Preview(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for len(lines) < n {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.Join(lines, "\n"), nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
