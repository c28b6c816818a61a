// Package wifi stores the WiFi network the device is provisioned to join.
//
// The store holds a single network. Saving replaces it. The password is
// sealed with XChaCha20-Poly1305 under a key derived from the configured
// storage key with Argon2id, and stored as nonce || ciphertext; the SSID
// is bound to the ciphertext as associated data so a sealed password
// cannot be moved to another network's row.
//
// Joining the network is the radio's job and out of scope here.
package wifi
