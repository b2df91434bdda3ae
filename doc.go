/*
Package librepo provides the core of a mirror-selection library: turning a
repository's configured sources (a single URL, a flat mirrorlist file, or a
Metalink document) into a ranked list of mirrors, sorted by measured
connect speed.

The main packages are:

	github.com/mirrorkit/librepo/internal/urlkit        - protocol classification and $variable substitution
	github.com/mirrorkit/librepo/internal/metalink      - Metalink XML parsing
	github.com/mirrorkit/librepo/internal/mirrorlist    - mirrorlist assembly (List, Mirror)
	github.com/mirrorkit/librepo/internal/fastestmirror - connect-time probing and cross-handle sorting
	github.com/mirrorkit/librepo/internal/config        - TOML configuration and environment overrides
	github.com/mirrorkit/librepo/internal/fetch         - source retrieval, decompression, signature verification
	github.com/mirrorkit/librepo/internal/cache         - on-disk cache for fetched source payloads
	github.com/mirrorkit/librepo/internal/lockfile      - flock-based mutual exclusion for cache writes
	github.com/mirrorkit/librepo/internal/fsutil        - directory fsync helpers
	github.com/mirrorkit/librepo/cmd/librepo-probe      - command-line interface
*/
package librepo
