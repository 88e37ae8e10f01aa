// Package eliasfano implements the Elias-Fano succinct encoding of
// monotone integer sequences.
//
// A sorted sequence of N values below a universe size U is split per value
// into a bucket (the high bits, stored in unary as runs of one-bits in an
// upper bit vector) and a remainder (the low l bits, stored in a packed
// fixed-width array), with l chosen as max(0, floor(log2(U/N))). The
// representation approaches the information-theoretic minimum while still
// answering rank and predecessor queries without decompression.
//
// Two variants are provided. Sequence supports sequential enumeration only
// and carries no auxiliary structures. Index additionally builds a
// select-zero index over the upper bit vector and answers Rank,
// RankAdaptive and Predecessor queries. Both are write-once: all storage is
// populated by the constructor and immutable afterwards, so any number of
// goroutines may query a published instance without locking.
package eliasfano
