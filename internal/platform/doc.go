// Package platform contains OS integration and text glue used by the
// downloader: filename and title transforms, unique destination paths,
// human readable units, OS open/reveal helpers and playlist expansion.
package platform
