package env

import (
	"fmt"
	"net/http"
)

const unset = "unset"

// Set at startup (or via -ldflags) to the build version.
var Version = unset

func VersionHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "%s\n", Version) // nolint:errcheck
}

// Dev builds don't have a version stamped in.
func IsDev() bool {
	return Version == unset || Version == "" || Version == "devel"
}
