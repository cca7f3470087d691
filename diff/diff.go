// Package diff computes the minimal contiguous edit between two full-text
// snapshots. The result is a single replacement range, sized for the common
// editing cases (typing at the cursor, prefix/suffix edits) and falling back
// to a full-text replacement whenever the edit script is not one clean hunk.
// Offsets are rune-based.
package diff

// Change describes "replace runes in [Start, End) of the previous text with
// Text". Applying it to the previous text reproduces the next text exactly.
type Change struct {
	Start int
	End   int
	Text  string
}

// hunk is one entry of the character-level edit script. A hunk with neither
// flag set is an unchanged run.
type hunk struct {
	runes   []rune
	added   bool
	removed bool
}

func (h hunk) count() int {
	return len(h.runes)
}

func (h hunk) skipped() bool {
	return !h.added && !h.removed
}

// script decomposes the edit into at most four hunks: unchanged prefix,
// removed middle, added middle, unchanged suffix.
func script(prev, next []rune) []hunk {
	prefix := 0
	for prefix < len(prev) && prefix < len(next) && prev[prefix] == next[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(prev)-prefix && suffix < len(next)-prefix &&
		prev[len(prev)-1-suffix] == next[len(next)-1-suffix] {
		suffix++
	}

	var hunks []hunk
	if prefix > 0 {
		hunks = append(hunks, hunk{runes: prev[:prefix]})
	}
	if removed := prev[prefix : len(prev)-suffix]; len(removed) > 0 {
		hunks = append(hunks, hunk{runes: removed, removed: true})
	}
	if added := next[prefix : len(next)-suffix]; len(added) > 0 {
		hunks = append(hunks, hunk{runes: added, added: true})
	}
	if suffix > 0 {
		hunks = append(hunks, hunk{runes: prev[len(prev)-suffix:]})
	}

	return hunks
}

func isPrefix(first, last hunk) bool {
	return (first.added || first.removed) && last.skipped()
}

func isSuffix(first, last hunk) bool {
	return first.skipped() && (last.added || last.removed)
}

func isRoot(first, last hunk) bool {
	return first.skipped() && last.skipped()
}

func processSingle(change hunk, prev, next []rune) *Change {
	if change.skipped() {
		return nil
	}

	return &Change{
		Start: 0,
		End:   len(prev),
		Text:  string(next),
	}
}

func processPrefix(change hunk) *Change {
	if change.added {
		return &Change{
			Start: 0,
			End:   0,
			Text:  string(change.runes),
		}
	}

	// removed
	return &Change{
		Start: 0,
		End:   change.count(),
		Text:  "",
	}
}

func processSuffix(change hunk, prev []rune) *Change {
	if change.added {
		return &Change{
			Start: len(prev),
			End:   len(prev),
			Text:  string(change.runes),
		}
	}

	// removed
	return &Change{
		Start: len(prev) - change.count(),
		End:   len(prev),
		Text:  "",
	}
}

func processDouble(hunks []hunk, prev, next []rune) *Change {
	first := hunks[0]
	last := hunks[len(hunks)-1]

	if isSuffix(first, last) {
		return processSuffix(last, prev)
	}

	if isPrefix(first, last) {
		return processPrefix(first)
	}

	// replaced
	return processSingle(last, prev, next)
}

func processMultiple(hunks []hunk, prev, next []rune) *Change {
	first := hunks[0]
	last := hunks[len(hunks)-1]

	if isRoot(first, last) {
		return &Change{
			Start: first.count(),
			End:   len(prev) - last.count(),
			Text:  string(next[first.count() : len(next)-last.count()]),
		}
	}

	if isSuffix(first, last) {
		return &Change{
			Start: first.count(),
			End:   len(prev),
			Text:  string(next[first.count():]),
		}
	}

	if isPrefix(first, last) {
		return &Change{
			Start: 0,
			End:   len(prev) - last.count(),
			Text:  string(next[:len(next)-last.count()]),
		}
	}

	return &Change{
		Start: 0,
		End:   len(prev),
		Text:  string(next),
	}
}

// Compute returns nil when both snapshots are identical, otherwise the
// replacement that turns prev into next.
func Compute(prev, next string) *Change {
	if prev == next {
		return nil
	}

	prevRunes := []rune(prev)
	nextRunes := []rune(next)
	hunks := script(prevRunes, nextRunes)

	switch len(hunks) {
	case 1:
		return processSingle(hunks[0], prevRunes, nextRunes)
	case 2:
		return processDouble(hunks, prevRunes, nextRunes)
	default:
		return processMultiple(hunks, prevRunes, nextRunes)
	}
}

// Apply replays a change on top of prev. It is the contract consumers of
// outbound content events implement on their side.
func Apply(prev string, change *Change) string {
	if change == nil {
		return prev
	}

	runes := []rune(prev)

	return string(runes[:change.Start]) + change.Text + string(runes[change.End:])
}
