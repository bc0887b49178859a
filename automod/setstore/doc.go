// Named sets of strings, loaded from a JSON file at startup.
//
// Used to extend the banned words list beyond what fits comfortably in an environment variable.
package setstore
