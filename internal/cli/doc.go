// Package cli implements the patchwork command line.
//
// Commands:
//
//	patchwork prepare ORIGIN [-f SRC:DEST]... [-p PATCH:DEST]... [-b DIR]
//	patchwork build IMAGE ORIGIN [-d DOCKERFILE] [-f ...] [-p ...] [-b DIR]
//	patchwork inputfiles [ORIGIN] [-f ...] [-p ...]
//	patchwork serve [--listen ADDR]
//
// Mapping values are either a JSON object ('{"src": "dest"}') or a single
// "src:dest" pair, and may be repeated; they are applied in the order given.
package cli
