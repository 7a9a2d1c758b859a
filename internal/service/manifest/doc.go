// Package manifest lays out the updater's directory structure for a build
// and writes the manifest the updater reads on first launch:
//
//	build/
//	  .manifest
//	  data-{packageId}-{buildId}/   (renamed bundler output)
//	  GamingChannelClient.exe       (the updater; gaming-channel-client off windows)
package manifest
