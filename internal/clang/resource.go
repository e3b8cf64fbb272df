package clang

import (
	"unsafe"
)

// ResourceUsageEntry is one memory category of a unit.
type ResourceUsageEntry struct {
	Kind   ResourceUsageKind
	Amount uint64
}

func (e ResourceUsageEntry) Name() string { return e.Kind.Name() }

// ResourceUsage estimates the memory a unit holds, by category. Amounts
// are in bytes.
func (t *TranslationUnit) ResourceUsage() ([]ResourceUsageEntry, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	var (
		ast, idents, sideTables, content, ppRecord, srcData uint64
	)
	names := map[string]struct{}{}
	for i := range u.nodes {
		n := &u.nodes[i]
		ast += uint64(unsafe.Sizeof(*n)) + uint64(len(n.children))*4
		if n.name != "" {
			names[n.name] = struct{}{}
		}
		if n.kind.IsPreprocessing() {
			ppRecord += uint64(unsafe.Sizeof(*n)) + uint64(len(n.body))
		}
	}
	for name := range names {
		idents += uint64(len(name)) + 16
	}
	for i := range u.types {
		sideTables += uint64(unsafe.Sizeof(u.types[i])) + uint64(len(u.types[i].params))*4
	}
	for k := range u.typeKeys {
		sideTables += uint64(len(k)) + 8
	}
	sideTables += uint64(len(u.ents)) * uint64(unsafe.Sizeof(entity{}))
	for _, c := range u.comments {
		sideTables += uint64(len(c.text))
	}
	for _, f := range u.files {
		content += uint64(len(f.contents))
		srcData += uint64(len(f.lines))*4 + uint64(len(f.skipped))*8 + uint64(len(f.lineDirs))*16
	}
	srcData += uint64(len(u.bufs)) * uint64(unsafe.Sizeof(buffer{}))

	var completion uint64
	for _, r := range u.completion {
		completion += uint64(unsafe.Sizeof(r))
		for _, c := range r.String.Chunks {
			completion += uint64(len(c.Text)) + 8
		}
	}
	preprocessor := uint64(u.macroCount)*64 + uint64(len(u.macros))*32

	return []ResourceUsageEntry{
		{UsageAST, ast},
		{UsageIdentifiers, idents},
		{UsageSelectors, 0},
		{UsageGlobalCompletionResults, completion},
		{UsageSourceManagerContentCache, content},
		{UsageASTSideTables, sideTables},
		{UsageSourceManagerMembufferMalloc, uint64(u.unsavedSz)},
		{UsageSourceManagerMembufferMMap, 0},
		{UsageExternalASTSourceMalloc, 0},
		{UsageExternalASTSourceMMap, 0},
		{UsagePreprocessor, preprocessor},
		{UsagePreprocessingRecord, ppRecord},
		{UsageSourceManagerDataStructures, srcData},
		{UsagePreprocessorHeaderSearch, uint64(u.headerDirs) * 64},
	}, nil
}
