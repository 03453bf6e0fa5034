package chacha20

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/RustCrypto/stream-ciphers-sub000/chacha20/internal/api"
)

const (
	// SeedSize is the RNG seed size in bytes.
	SeedSize = 32

	// StreamIDSize is the RNG stream identifier size in bytes.
	StreamIDSize = 12

	rngBufBlocks = 4
	rngBufWords  = rngBufBlocks * blockWords
	blockWords   = api.StateSize

	// wordPosMask is the 36 bit addressable word space: a 32 bit block
	// counter times 16 words per block.
	wordPosMask = (uint64(1) << 36) - 1

	rngStateSize = SeedSize + StreamIDSize + 5
)

// ErrInvalidRNGState is the error returned when unmarshaling an RNG from a
// buffer of the wrong size.
var ErrInvalidRNGState = errors.New("chacha20: invalid serialized RNG state")

// RNG is a cryptographically secure random number generator built on the
// ChaCha block function.
//
// The word layout follows the IETF construction except that the three
// nonce words hold a 96 bit stream identifier, multiplexing independent
// streams out of a single seed, and the 32 bit block counter wraps
// silently: the generator simply cycles after 256 GiB of output.  That
// wraparound is deliberate and differs from the Cipher API, which reports
// exhaustion instead.
type RNG struct {
	state [api.StateSize]uint32
	buf   [rngBufWords * 4]byte

	impl   api.Implementation
	idx    int // word index into buf; rngBufWords means empty
	rounds int
}

// NewRNG returns an RNG seeded with the provided 32 byte seed, using the
// given ChaCha round count (8, 12 or 20).  The stream identifier and word
// position start at zero.
func NewRNG(seed []byte, rounds int) (*RNG, error) {
	switch rounds {
	case 8, 12, 20:
	default:
		return nil, ErrInvalidRounds
	}
	if len(seed) != SeedSize {
		return nil, ErrInvalidKey
	}

	r := RNG{impl: activeImpl, rounds: rounds, idx: rngBufWords}
	r.state[0] = api.Sigma0
	r.state[1] = api.Sigma1
	r.state[2] = api.Sigma2
	r.state[3] = api.Sigma3
	for i := 0; i < 8; i++ {
		r.state[4+i] = binary.LittleEndian.Uint32(seed[i*4:])
	}
	return &r, nil
}

// refill generates the next four-block window of keystream.  The counter
// wraps modulo 2^32 by design, and must never carry into the stream
// identifier word, so the wrap boundary is handled block by block.
func (r *RNG) refill() {
	start := r.state[12]
	stream0 := r.state[13]

	if start <= math.MaxUint32-(rngBufBlocks-1) {
		// No wrap inside this window; the backend's 64 bit counter
		// advance cannot carry out of word 12 mid-call.
		r.impl.Blocks(&r.state, r.buf[:], nil, rngBufBlocks, r.rounds)
	} else {
		for i := 0; i < rngBufBlocks; i++ {
			r.state[12] = start + uint32(i)
			r.state[13] = stream0
			r.impl.Blocks(&r.state, r.buf[i*api.BlockSize:(i+1)*api.BlockSize], nil, 1, r.rounds)
		}
	}
	r.state[12] = start + rngBufBlocks
	r.state[13] = stream0
	r.idx = 0
}

// Uint32 returns the next keystream word.
func (r *RNG) Uint32() uint32 {
	if r.idx == rngBufWords {
		r.refill()
	}
	v := binary.LittleEndian.Uint32(r.buf[r.idx*4:])
	r.idx++
	return v
}

// Uint64 returns the next two keystream words as a little endian 64 bit
// value.
func (r *RNG) Uint64() uint64 {
	lo := uint64(r.Uint32())
	hi := uint64(r.Uint32())
	return hi<<32 | lo
}

// Read fills p with keystream bytes, consuming whole 32 bit words.  A
// trailing partial word's unused bytes are discarded, matching the word
// granularity of the position accounting.  It never fails.
func (r *RNG) Read(p []byte) (int, error) {
	n := len(p)
	for len(p) >= 4 {
		binary.LittleEndian.PutUint32(p, r.Uint32())
		p = p[4:]
	}
	if len(p) > 0 {
		var w [4]byte
		binary.LittleEndian.PutUint32(w[:], r.Uint32())
		copy(p, w[:])
	}
	return n, nil
}

// WordPos returns the offset from the start of the stream in 32 bit
// words, as a 36 bit value.  The window buffering is invisible here: the
// reported position always has single-word granularity.
func (r *RNG) WordPos() uint64 {
	bufStartBlock := r.state[12] - rngBufBlocks // wraps by design
	posBlock := bufStartBlock + uint32(r.idx/blockWords)
	return (uint64(posBlock)*blockWords + uint64(r.idx%blockWords)) & wordPosMask
}

// SetWordPos seeks to the given offset from the start of the stream, in
// 32 bit words.  Only the low 36 bits are used.
func (r *RNG) SetWordPos(pos uint64) {
	pos &= wordPosMask
	r.state[12] = uint32(pos >> 4)
	r.refill()
	r.idx = int(pos & 0x0f)
}

// SetStream sets the 96 bit stream identifier.  If the generator is in the
// middle of a buffered window the window is regenerated under the new
// stream at the same word position.
func (r *RNG) SetStream(stream [StreamIDSize]byte) {
	pos := r.WordPos()
	mid := r.idx != rngBufWords

	for i := 0; i < 3; i++ {
		r.state[13+i] = binary.LittleEndian.Uint32(stream[i*4:])
	}
	if mid {
		r.SetWordPos(pos)
	} else {
		// Rewind the counter so the next refill starts where the old
		// stream left off.
		r.state[12] = uint32(pos >> 4)
	}
}

// Stream returns the 96 bit stream identifier.
func (r *RNG) Stream() [StreamIDSize]byte {
	var stream [StreamIDSize]byte
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(stream[i*4:], r.state[13+i])
	}
	return stream
}

// Seed returns the 32 byte seed.
func (r *RNG) Seed() [SeedSize]byte {
	var seed [SeedSize]byte
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(seed[i*4:], r.state[4+i])
	}
	return seed
}

// MarshalBinary serializes the abstract generator state (seed, stream
// identifier and word position) for reproducible resumption.  The internal
// window buffering is not part of the abstract state.
func (r *RNG) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, rngStateSize)
	seed := r.Seed()
	stream := r.Stream()
	out = append(out, seed[:]...)
	out = append(out, stream[:]...)

	var pos [8]byte
	binary.LittleEndian.PutUint64(pos[:], r.WordPos())
	out = append(out, pos[:5]...)
	return out, nil
}

// UnmarshalBinary restores a generator serialized with MarshalBinary.
func (r *RNG) UnmarshalBinary(data []byte) error {
	if len(data) != rngStateSize {
		return ErrInvalidRNGState
	}

	fresh, err := NewRNG(data[:SeedSize], r.roundsOrDefault())
	if err != nil {
		return err
	}
	*r = *fresh

	var stream [StreamIDSize]byte
	copy(stream[:], data[SeedSize:SeedSize+StreamIDSize])
	r.SetStream(stream)

	var pos [8]byte
	copy(pos[:5], data[SeedSize+StreamIDSize:])
	wp := binary.LittleEndian.Uint64(pos[:]) & wordPosMask
	if wp != 0 {
		r.SetWordPos(wp)
	}
	return nil
}

func (r *RNG) roundsOrDefault() int {
	if r.rounds == 0 {
		return 20
	}
	return r.rounds
}

// Reset zeros the generator state, including the buffered keystream.
func (r *RNG) Reset() {
	for i := range r.state {
		r.state[i] = 0
	}
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.idx = rngBufWords
}
