// Package totp implements the time-based one-time password algorithm
// (RFC 6238 over RFC 4226) together with the Base32 secret codec
// (RFC 4648) and the otpauth:// provisioning URI format.
//
// Everything here is pure: code generation takes an explicit timestamp
// so callers can pin time in tests, and no function touches global
// state. The vault registry is the only intended caller for code
// generation; URI parsing is used when importing a scanned QR payload.
package totp
