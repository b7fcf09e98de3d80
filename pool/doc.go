// File: pool/doc.go
// Package pool
// Author: momentics <momentics@gmail.com>
//
// Cross-platform, NUMA-aware scratch buffer pooling for EventHandler
// implementations; the reactor package does not import it.
// All exported methods are thread-safe.
package pool
