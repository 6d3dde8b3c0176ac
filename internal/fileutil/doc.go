// Package fileutil provides the file system primitives used by the copy
// engine: copying single files, copying whole trees, and picking collision
// names that never overwrite an existing destination.
//
// # Copying
//
// CopyFile overwrites its destination and returns the number of bytes
// written. CopyTree refuses to write into an existing destination, so trees
// are never merged:
//
//	n, err := fileutil.CopyTree("/data/55081", "/out/55081/55081")
//	if errors.Is(err, fileutil.ErrDestinationExists) {
//	    // pick another name with CollisionName
//	}
//
// Symlinks inside a tree are recreated rather than followed. Devices,
// sockets and pipes are skipped.
//
// # Collision names
//
// CollisionName appends _dupN before a file's extension, or to the end of a
// directory name, choosing the smallest N whose path is free:
//
//	scan.txt   -> scan_dup1.txt, scan_dup2.txt, ...
//	55081      -> 55081_dup1, 55081_dup2, ...
package fileutil
