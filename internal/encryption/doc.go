// Package encryption provides the AES block cipher engine (ECB, CBC and
// CFB-128 over 128, 192 and 256-bit keys) and the encrypting stream used to
// store file data and directories inside pack archives.
//
// None of the modes pad internally; callers handle block alignment.
package encryption
