package sites

import "strings"

// EncodeDomain builds the registry key for an indexer by appending its ID to
// the plugin's domain prefix, e.g. "jackett.indexer" + "rarbg" =>
// "jackett.indexer.rarbg".
func EncodeDomain(prefix, id string) string {
	return prefix + "." + id
}

// DecodeDomainID extracts an indexer ID from an encoded domain. It strips a
// leading http:// or https:// and a trailing slash, then returns the segment
// after the last dot.
//
// Known limitation: an indexer ID that itself contains a dot is truncated to
// its final segment. Identity is therefore stored in the registry's
// IndexerID column and this decode is only the fallback for rows written
// before that column existed.
func DecodeDomainID(domain string) string {
	d := strings.TrimPrefix(domain, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimSuffix(d, "/")

	if i := strings.LastIndex(d, "."); i >= 0 {
		return d[i+1:]
	}
	return d
}
