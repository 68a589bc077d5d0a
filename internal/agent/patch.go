package agent

import (
	"fmt"
	"os"
	"strings"
)

// Patch block markers. These are literal and case-sensitive.
const (
	SearchMarker    = "<<<<<<< SEARCH"
	SeparatorMarker = "======="
	ReplaceMarker   = ">>>>>>> REPLACE"
)

// EditBlock is one ordered search/replace pair parsed from a patch argument.
type EditBlock struct {
	Search  string
	Replace string
}

// PatchSyntaxError reports a malformed patch argument.
type PatchSyntaxError struct {
	Reason string
}

func (e *PatchSyntaxError) Error() string {
	return "patch syntax error: " + e.Reason
}

// PatchNotFoundError reports a block whose search text does not occur in the
// current file content.
type PatchNotFoundError struct {
	File   string
	Search string
}

func (e *PatchNotFoundError) Error() string {
	return fmt.Sprintf("search text not found in %s: %q", e.File, e.Search)
}

// ParsePatchArg splits a patch tool argument into the target file path and
// its edit blocks. The first line is the path; the remainder holds one or
// more marker-delimited blocks.
func ParsePatchArg(arg string) (string, []EditBlock, error) {
	path, rest, _ := strings.Cut(arg, "\n")
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil, &PatchSyntaxError{Reason: "missing file path on first line"}
	}

	blocks, err := parseEditBlocks(rest)
	if err != nil {
		return "", nil, err
	}
	return path, blocks, nil
}

// parseEditBlocks repeatedly locates the next begin marker, the following
// separator, and the following end marker. Text between begin and separator
// is the trimmed search string; between separator and end the trimmed
// replacement.
func parseEditBlocks(text string) ([]EditBlock, error) {
	var blocks []EditBlock

	rest := text
	for {
		begin := strings.Index(rest, SearchMarker)
		if begin < 0 {
			break
		}
		rest = rest[begin+len(SearchMarker):]

		sep := strings.Index(rest, SeparatorMarker)
		if sep < 0 {
			return nil, &PatchSyntaxError{Reason: "missing ======= separator after " + SearchMarker}
		}
		search := strings.TrimSpace(rest[:sep])
		rest = rest[sep+len(SeparatorMarker):]

		end := strings.Index(rest, ReplaceMarker)
		if end < 0 {
			return nil, &PatchSyntaxError{Reason: "missing " + ReplaceMarker + " after separator"}
		}
		replace := strings.TrimSpace(rest[:end])
		rest = rest[end+len(ReplaceMarker):]

		if strings.Contains(search, SearchMarker) {
			return nil, &PatchSyntaxError{Reason: "nested " + SearchMarker + " inside edit block"}
		}
		if search == "" {
			return nil, &PatchSyntaxError{Reason: "empty search text"}
		}

		blocks = append(blocks, EditBlock{Search: search, Replace: replace})
	}

	if len(blocks) == 0 {
		return nil, &PatchSyntaxError{Reason: "no edit blocks found"}
	}
	return blocks, nil
}

// ApplyPatch reads the file once, applies the blocks in parsed order against
// the in-memory content, and writes the result back in a single write only
// after every block has matched. Each block's search text is replaced at all
// of its occurrences in the current content. A block whose search text is
// absent fails the whole call and leaves the on-disk file unchanged, even if
// earlier blocks had already matched in memory. Returns the applied block
// count.
func ApplyPatch(path string, blocks []EditBlock) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}
	content := string(data)

	for _, block := range blocks {
		if !strings.Contains(content, block.Search) {
			return 0, &PatchNotFoundError{File: path, Search: block.Search}
		}
		content = strings.ReplaceAll(content, block.Search, block.Replace)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), info.Mode()); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return len(blocks), nil
}
