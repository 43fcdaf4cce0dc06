// Package guavahash implements Guava's consistent hashing
// (Hashing.consistentHash), the "jump" consistent hash of Lamping and Veach
// driven by Guava's linear congruential generator.
//
// Guava maps a 64-bit key to one of n buckets so that growing the bucket
// count from n to n+1 moves only about 1/(n+1) of the keys, all of them into
// the new bucket. No bucket table is stored: the assignment is a pure
// function of the key and the bucket count, and it is bit-for-bit identical
// to the Java implementation, so Go and JVM services agree on placement
// without coordinating.
//
// # Keys
//
// The key is supplied by the caller. Guava does not hash strings or byte
// slices; derive a well-distributed 64-bit key first (for example with
// xxh3 or a murmur hash) and pass it in.
//
//	shard := guavahash.Guava(int64(xxh3.HashString(userID)), int32(len(shards)))
//
// # Bucket counts
//
// A non-positive bucket count yields 0. That result is not a real
// assignment; callers needing one must pass at least one bucket.
//
// Each call runs in O(log n) iterations for well-distributed keys. No
// tighter bound than n holds for adversarial keys.
package guavahash
