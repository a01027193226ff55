// Veles is a network threat-detection engine built around named datasets:
// dynamically loaded sets of hashes, addresses and strings that signatures
// match extracted buffer bytes against.
//
// Usage:
//
//	# Validate a dataset file
//	veles datasets check hashes.lst --type md5
//
//	# Dump a dataset file in canonical form
//	veles datasets dump feed.ndjson --type ipv4 --format ndjson --value-key ip
//
//	# Show version information
//	veles version
package main

func main() {
	Execute()
}
