package doc

import (
	"github.com/dekarrin/sturgeon/arena"
	"github.com/dekarrin/sturgeon/buffer"
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/parse"
	"github.com/dekarrin/sturgeon/ref"
)

// Write replaces the text in span with text, incrementally rescanning and
// reparsing around the edit rather than redoing the whole document. Returns
// an error if the Document is immutable or span is invalid; lex/parse
// themselves never fail (spec.md §7), so the only failures surfaced here
// come from the buffer.
func (d *Document) Write(span buffer.Span, text string) error {
	d.mu.Lock()

	if !d.mutable {
		d.mu.Unlock()
		return &buffer.InvalidOpError{Op: "Write", Reason: "document is immutable"}
	}

	oldToks := make([]lex.Token, len(d.order))
	for i, tr := range d.order {
		tok, _ := d.tokens.Get(tr.Entry)
		oldToks[i] = tok
	}

	delta := len([]rune(text)) - span.Len()

	if err := d.buf.Write(span, text); err != nil {
		d.mu.Unlock()
		return err
	}

	preEditEntries := map[arena.Entry]bool{}
	d.nodes.Iter(func(e arena.Entry, _ *nodeRecord) bool {
		preEditEntries[e] = true
		return true
	})

	newSrc := []rune(mustSubstring(d.buf, buffer.Span{Start: 0, End: d.buf.Len()}))
	rescan := d.scanner.Rescan(oldToks, span.Start, span.End, newSrc, delta)

	newOrder := make([]ref.TokenRef, 0, len(d.order))
	newOrder = append(newOrder, d.order[:rescan.ReplaceStart]...)
	for _, nt := range rescan.New {
		e := d.tokens.Insert(nt)
		newOrder = append(newOrder, ref.TokenRef{Doc: d.id, Entry: e})
	}
	for i := rescan.ReplaceEnd; i < len(d.order); i++ {
		tr := d.order[i]
		tok, ok := d.tokens.Get(tr.Entry)
		if !ok {
			continue
		}
		tok.Start += rescan.Delta
		d.tokens.Replace(tr.Entry, tok)
		newOrder = append(newOrder, tr)
	}
	// The replaced old token entries ([ReplaceStart:ReplaceEnd)) are no
	// longer part of the live stream; remove them so stale TokenRefs held
	// externally become detectably stale.
	for i := rescan.ReplaceStart; i < rescan.ReplaceEnd; i++ {
		d.tokens.Remove(d.order[i].Entry)
	}
	d.order = newOrder

	fullToks := make([]lex.Token, len(d.order))
	for i, tr := range d.order {
		fullToks[i], _ = d.tokens.Get(tr.Entry)
	}

	d.engine.InvalidateFrom(span.Start)
	tree := d.engine.Parse(parse.NewTokenSource(fullToks), d)
	d.root = tree.Root
	d.errs = tree.Errors

	liveEntries := map[arena.Entry]bool{}
	var collectLive func(n ref.NodeRef)
	collectLive = func(n ref.NodeRef) {
		if n.IsNil() || liveEntries[n.Entry] {
			return
		}
		liveEntries[n.Entry] = true
		nd, ok := d.nodes.Get(n.Entry)
		if !ok {
			return
		}
		for _, c := range nd.children {
			if cn := c.AsNodeRef(); !cn.IsNil() {
				collectLive(cn)
			}
		}
	}
	collectLive(d.root)

	var removed []ref.NodeRef
	for e := range preEditEntries {
		if !liveEntries[e] {
			d.nodes.Remove(e)
			removed = append(removed, ref.NodeRef{Doc: d.id, Entry: e})
		}
	}

	touchedKinds := map[parse.NodeKind]bool{}
	for e := range liveEntries {
		if !preEditEntries[e] {
			if nd, ok := d.nodes.Get(e); ok {
				touchedKinds[nd.kind] = true
			}
		}
	}
	d.lastEditKinds = touchedKinds
	d.lastEditSpan = buffer.Span{Start: span.Start, End: span.Start + len([]rune(text))}
	d.lastEditRemoved = removed

	hook := d.onEdit
	d.mu.Unlock()

	if hook != nil {
		hook(d)
	}
	return nil
}
