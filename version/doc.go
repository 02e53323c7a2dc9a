// Package version reports the meetingmind build.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/meetingmind/version.Version=1.2.0" ./cmd/meetingmind
//
// Values left empty are filled from the module build info when the binary
// was built from a VCS checkout.
package version
