// Package sanitizer normalizes host and guest directory fields before they are
// validated and compared.
//
// All functions are idempotent and never fail: unusable input yields an empty
// string rather than an error.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]), national numbers read as US
//   - Emails: trimmed and lowercased
//   - States: trimmed and uppercased two-letter codes
//   - Names, cities, addresses: whitespace collapsed and trimmed
//   - Location keys: lowercase letters and digits only, so "Fort Lauderdale"
//     and "fort-lauderdale" compare equal
package sanitizer
