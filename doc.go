// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

/*
Package vpk reads Valve VPK packages: one directory file ("*_dir.vpk")
holding the index and optional inline data, plus numbered archives
("*_000.vpk", "*_001.vpk", ...) holding the remaining payload bytes.
Format versions 0 (headerless), 1, and 2 are supported. Packages are
read-only.

# Reading

Open a package and list its files:

	pkg, err := vpk.Open("pak01_dir.vpk")
	if err != nil {
	    return err
	}
	for _, path := range pkg.List() {
	    fmt.Println(path)
	}

Look up a node by path:

	node, ok := pkg.Get("materials/models/props.vmt")
	if ok {
	    if f, isFile := node.(*vpk.File); isFile {
	        _ = f.TotalSize()
	    }
	}

# Processing

Every file's payload (preload bytes followed by archive bytes) is streamed
through a DataHandler created per file. Built-in variants check CRC32 sums,
write files to disk, or compute content digests:

	if err := pkg.Check(ctx); err != nil {
	    return err
	}
	if err := pkg.Extract(ctx, "out/", vpk.ExtractOptions{Check: true}); err != nil {
	    return err
	}

Errors during processing are routed through a Handler. Each error callback
returns true to abort the run or false to skip the affected file or archive.
A package without a handler treats every error as fatal:

	pkg, err := vpk.OpenWithOptions("pak01_dir.vpk", vpk.Options{Handler: myHandler})

An archive that fails to open is reported once per run; later files that
reference it are skipped silently.

# Filtering

Prune the tree to selected paths (directories keep everything below them):

	if err := pkg.Filter([]string{"materials", "scripts/game.txt"}); err != nil {
	    return err
	}

or to glob rules, examples below use github.com/woozymasta/pathrules:

	err := pkg.FilterRules(vpk.IncludeRules("materials/**"), pathrules.MatcherOptions{
	    CaseInsensitive: true,
	})

# Random access

FileReader serves byte ranges of a file for virtual filesystem adapters:

	r := pkg.NewFileReader()
	defer r.Close()
	n, err := r.ReadAt(f, buf, 4096)
*/
package vpk
