package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DeriveFileID computes a stable id for a file from its repository and
// path, so re-indexing the same path in the same repository always yields
// the same id (spec.md §4.7 step 2: "compute id deterministically ... so
// that re-indexing yields the same id").
func DeriveFileID(repositoryID, path string) string {
	return hashID("file", repositoryID, path)
}

// DeriveSymbolID computes a stable id for a symbol from the file it
// belongs to plus its definition site, so re-indexing reproduces the same
// symbol id for an unchanged declaration.
func DeriveSymbolID(fileID, name string, lineStart, columnStart int) string {
	return hashID("symbol", fileID, name, fmt.Sprint(lineStart), fmt.Sprint(columnStart))
}

// DeriveReferenceID computes a stable id for a reference from its file and
// position, so re-indexing an unchanged line reproduces the same id.
func DeriveReferenceID(fileID, name string, line, column int) string {
	return hashID("reference", fileID, name, fmt.Sprint(line), fmt.Sprint(column))
}

// DeriveEdgeID computes a stable id for a dependency edge from its
// endpoints and type.
func DeriveEdgeID(repositoryID, from, to, edgeType string) string {
	return hashID("edge", repositoryID, from, to, edgeType)
}

// BuildSymbolKey computes the "<file_path>::<name>::<line_start>" key
// spec.md §4.7 step 4 uses to link references to the symbols they
// target. Two symbols sharing a file, name, and starting line collide in
// any map keyed by this function (documented Open Question resolution:
// see DESIGN.md): in a plain map the second definition silently shadows
// the first. Run does not key any map by this function; it resolves
// references through buildNameKey instead.
func BuildSymbolKey(filePath, name string, lineStart int) string {
	return fmt.Sprintf("%s::%s::%d", filePath, name, lineStart)
}

// buildNameKey computes a coarser "<file_path>::<name>" key used to
// resolve reference targets, since a reference site does not generally
// know the line its target symbol was defined on (spec.md §4.7 step 5 is
// silent on how a reference's target key is computed; this package
// resolves references by file+name only, and the first definition wins on
// collision, unlike the later-write-wins shadowing BuildSymbolKey documents
// for exact line collisions).
func buildNameKey(filePath, name string) string {
	return filePath + "::" + name
}

func hashID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
