// Package textutil provides token-based text fingerprinting and cosine
// similarity. The insight engine uses it to suppress near-duplicate
// insights generated from overlapping transcript windows.
//
// Fingerprints use term frequency vectors normalized for efficient comparison.
// The tokenization process lowercases text, splits on non-alphanumeric characters,
// and filters tokens shorter than 3 characters.
package textutil
