// Package wire implements frestq's JSON encode/decode conventions for data
// crossing the network, grounded on original_source/frestq/utils.py's
// dumps/loads and JSONDateTimeEncoder/datetime_decoder.
//
// Encoding stamps every [Time] value as a fixed-format ISO-8601 string
// ("2006-01-02T15:04:05.000000", i.e. Python's "%Y-%m-%dT%H:%M:%S.%f");
// a plain time.Time passed to Dumps keeps encoding/json's RFC 3339 form.
// Decoding walks the resulting JSON tree and opportunistically reparses any
// plain string matching that exact layout back into a time.Time. This is a
// deliberate, documented footgun carried over unchanged for wire
// compatibility: a user-supplied string that happens to match the layout is
// silently turned into a timestamp on decode, exactly like the original.
package wire
