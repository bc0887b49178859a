// Per-user sliding windows of recent message timestamps, used for rate-based spam detection.
//
// Windows are never persisted; a process restart starts everybody with an empty window.
package windowstore
