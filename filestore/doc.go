// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package filestore keeps uploaded project photos on disk.

Layout under the uploads directory:

	<project>/<uuid hex>_<name>.png        stored photos
	.pending/<project>/<uuid hex>_<name>   copies waiting to be forwarded

Every file operation goes through an os.Root opened on the uploads
directory, so relative paths from clients cannot reach outside it. Project
names must be a single path segment and may not start with a dot.
*/
package filestore
