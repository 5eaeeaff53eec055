// Package qkd simulates single decoy-state BB84 key-distribution sessions.
//
// A session is one-shot: Run draws every pulse, sifts, estimates the error
// rate on a disclosed sample, compares signal and decoy yields, and either
// aborts with a reason or returns a hashed key. Aborts are ordinary results.
package qkd

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/sha3"
)

// KeySize is the length in bytes of a derived key.
const KeySize = 32

// AbortReason names why a session did not produce a key. Empty on success.
type AbortReason string

const (
	AbortNone         AbortReason = ""
	AbortQBER         AbortReason = "QBER too high"
	AbortDecoyAnomaly AbortReason = "decoy-state anomaly"
	AbortNoSiftedBits AbortReason = "no sifted bits"
)

// Result is the outcome of one session.
type Result struct {
	SessionID uuid.UUID
	Success   bool
	Reason    AbortReason

	QBER        float64
	SignalYield float64 // detection rate over sifted signal pulses
	DecoyYield  float64 // detection rate over sifted decoy pulses
	YieldGap    float64 // |SignalYield − DecoyYield|

	Sifted    int // basis-matched positions
	Disclosed int // sifted bits sacrificed for QBER estimation
	KeyBits   int // agreed bits fed to the hash

	Key []byte // KeySize bytes on success, nil on abort
}

// Message renders the abort reason the way operators read it, including the
// measured gap for decoy anomalies.
func (r Result) Message() string {
	switch r.Reason {
	case AbortNone:
		return "ok"
	case AbortDecoyAnomaly:
		return fmt.Sprintf("abort: %s (gap=%.3f)", r.Reason, r.YieldGap)
	default:
		return fmt.Sprintf("abort: %s", r.Reason)
	}
}

// Run simulates one session with randomness drawn from rng.
// Panics if rng is nil or cfg.Pulses < 1.
func Run(cfg Config, rng *rand.Rand) Result {
	if rng == nil {
		panic("qkd.Run: nil rng")
	}
	if cfg.Pulses < 1 {
		panic(fmt.Sprintf("qkd.Run: pulses must be >= 1, got %d", cfg.Pulses))
	}
	n := cfg.Pulses

	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// *rand.Rand.Read never fails.
		panic(err)
	}
	res := Result{SessionID: id}
	log := logrus.WithField("session", id.String())

	// Sender: bits, bases, decoy tags.
	bitsA := randomBits(rng, n)
	basesA := randomBits(rng, n)
	decoy := make([]bool, n)
	for i := range decoy {
		decoy[i] = rng.Float64() < cfg.DecoyFraction
	}

	// Channel: uniform detection, independent of the decoy tag.
	detected := make([]bool, n)
	for i := range detected {
		detected[i] = rng.Float64() < cfg.ChannelEfficiency
	}

	// Photon-number splitting: the attacker blocks detected decoys only.
	if cfg.Eavesdropper {
		for i := range detected {
			block := rng.Float64() < cfg.PNSDropFraction
			if decoy[i] && detected[i] && block {
				detected[i] = false
			}
		}
	}

	// Receiver: independent bases; matched bases reproduce the sender's bit
	// up to noise, mismatched bases read uniform noise.
	basesB := randomBits(rng, n)
	flips := make([]bool, n)
	for i := range flips {
		flips[i] = rng.Float64() < cfg.NoiseFlipProb
	}
	bitsB := randomBits(rng, n)

	var siftA, siftB []byte
	var sigTotal, sigHits, decTotal, decHits int
	for i := 0; i < n; i++ {
		if basesA[i] != basesB[i] {
			continue
		}
		b := bitsA[i]
		if flips[i] {
			b ^= 1
		}
		bitsB[i] = b
		siftA = append(siftA, bitsA[i])
		siftB = append(siftB, b)
		if decoy[i] {
			decTotal++
			if detected[i] {
				decHits++
			}
		} else {
			sigTotal++
			if detected[i] {
				sigHits++
			}
		}
	}
	res.Sifted = len(siftA)
	res.SignalYield = ratio(sigHits, sigTotal)
	res.DecoyYield = ratio(decHits, decTotal)
	res.YieldGap = math.Abs(res.SignalYield - res.DecoyYield)

	if res.Sifted == 0 {
		res.Reason = AbortNoSiftedBits
		log.Debug("qkd session aborted: no sifted bits")
		return res
	}

	// Disclose a random sample (at least one bit) to estimate QBER.
	sampleLen := max(1, int(float64(res.Sifted)*cfg.SampleFraction))
	sampleLen = min(sampleLen, res.Sifted)
	disclosed := make([]bool, res.Sifted)
	mismatches := 0
	for _, idx := range rng.Perm(res.Sifted)[:sampleLen] {
		disclosed[idx] = true
		if siftA[idx] != siftB[idx] {
			mismatches++
		}
	}
	res.Disclosed = sampleLen
	res.QBER = float64(mismatches) / float64(sampleLen)

	if res.QBER > cfg.QBERLimit {
		res.Reason = AbortQBER
		log.WithField("qber", res.QBER).Debug("qkd session aborted")
		return res
	}
	if res.YieldGap > cfg.YieldGapLimit {
		res.Reason = AbortDecoyAnomaly
		log.WithFields(logrus.Fields{
			"signal_yield": res.SignalYield,
			"decoy_yield":  res.DecoyYield,
			"gap":          res.YieldGap,
		}).Debug("qkd session aborted")
		return res
	}

	var keepA, keepB []byte
	for i := range siftA {
		if !disclosed[i] {
			keepA = append(keepA, siftA[i])
			keepB = append(keepB, siftB[i])
		}
	}
	key, agreed := reconcile(keepA, keepB)
	res.Success = true
	res.Key = key
	res.KeyBits = agreed
	return res
}

// reconcile applies one global parity correction to b (flipping b[0] when
// the parities differ), discards positions that still disagree, and hashes
// the agreed bits (one byte per bit) with SHA3-256. b is not modified.
// Returns the key and the number of agreed bits.
func reconcile(a, b []byte) ([]byte, int) {
	fixed := make([]byte, len(b))
	copy(fixed, b)
	if len(fixed) > 0 && parity(a) != parity(fixed) {
		fixed[0] ^= 1
	}
	agreed := make([]byte, 0, len(a))
	for i := range a {
		if a[i] == fixed[i] {
			agreed = append(agreed, a[i])
		}
	}
	sum := sha3.Sum256(agreed)
	return sum[:], len(agreed)
}

func parity(bits []byte) byte {
	var p byte
	for _, b := range bits {
		p ^= b & 1
	}
	return p
}

func randomBits(rng *rand.Rand, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(rng.Intn(2))
	}
	return out
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
