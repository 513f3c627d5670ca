package census

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots"
	"github.com/dgraph-io/badger/v3"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Census database format:

	gCensusStateKey                      => NumSamples (uint64), NumFailed (uint64)

	gSignaturePrefix, Signature (4 x uint32) => Count (uint64)

All integers are big-endian so signature keys iterate in (Loops, Paths, Water, Land) order.

***/

var (
	gCensusStateKey  = []byte{0x00, 0x00, 0x01}
	gSignaturePrefix = []byte{0x01}
)

const signatureKeyLen = 1 + 4*4

// Signature is the outcome of analysing one map.
type Signature struct {
	Loops int
	Paths int
	Water int
	Land  int
}

// SignatureOf returns the signature of the given analysis results.
func SignatureOf(curves goknots.CurveCounts, regions goknots.RegionCounts) Signature {
	return Signature{
		Loops: curves.Loops,
		Paths: curves.Paths,
		Water: regions.Water,
		Land:  regions.Land,
	}
}

func (sig Signature) String() string {
	return fmt.Sprintf("loops=%d paths=%d water=%d land=%d", sig.Loops, sig.Paths, sig.Water, sig.Land)
}

func (sig Signature) appendKey(key []byte) []byte {
	key = append(key, gSignaturePrefix...)
	key = binary.BigEndian.AppendUint32(key, uint32(sig.Loops))
	key = binary.BigEndian.AppendUint32(key, uint32(sig.Paths))
	key = binary.BigEndian.AppendUint32(key, uint32(sig.Water))
	key = binary.BigEndian.AppendUint32(key, uint32(sig.Land))
	return key
}

func signatureFromKey(key []byte) Signature {
	return Signature{
		Loops: int(binary.BigEndian.Uint32(key[1:])),
		Paths: int(binary.BigEndian.Uint32(key[5:])),
		Water: int(binary.BigEndian.Uint32(key[9:])),
		Land:  int(binary.BigEndian.Uint32(key[13:])),
	}
}

// Entry is one line of a census histogram.
type Entry struct {
	Signature
	Count uint64
}

// Opts configures where a Census keeps its counters.
type Opts struct {
	DbPathName string // if empty, the census is held in memory
	ReadOnly   bool
}

// SurveyOpts selects the maps a Survey samples.
type SurveyOpts struct {
	N, M      int
	Kind      goknots.TopologyKind
	Templates []*libknots.Template // placed uniformly at random
	Samples   int                  // number of maps, seeded Seed, Seed+1, ...
	Seed      int64
	Workers   int // if <= 0, runtime.NumCPU()
}

// DefaultSurveyOpts returns the survey of 7x5 planar maps of the standard tiles.
func DefaultSurveyOpts() SurveyOpts {
	return SurveyOpts{
		N:         7,
		M:         5,
		Kind:      goknots.Plane,
		Templates: libknots.StandardTemplates(),
		Samples:   1000,
		Seed:      1,
	}
}

// SurveyResult summarizes one call to Survey.
type SurveyResult struct {
	Samples  int // maps analysed
	Failed   int // maps whose analysis returned an error
	Distinct int // layouts not seen before by this Census
}

// Census tallies map signatures, in memory or on disk.
type Census struct {
	db         *badger.DB
	readOnly   bool
	numSamples uint64
	numFailed  uint64
	stateDirty bool
	layouts    layoutSet
}

// Open opens (or creates) the census stored at opts.DbPathName.
func Open(opts Opts) (*Census, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.New("census: DbPathName must be specified for a read-only census")
		}
		dbOpts.InMemory = true
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrap(err, "census: open")
	}

	cen := &Census{
		db:       db,
		readOnly: opts.ReadOnly,
	}
	if err = cen.loadState(); err != nil {
		cen.Close()
		return nil, err
	}
	return cen, nil
}

func (cen *Census) loadState() error {
	return cen.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCensusStateKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 16 {
				return errors.Errorf("census: bad state record (%d bytes)", len(val))
			}
			cen.numSamples = binary.BigEndian.Uint64(val[0:])
			cen.numFailed = binary.BigEndian.Uint64(val[8:])
			return nil
		})
	})
}

func (cen *Census) flushState() error {
	if !cen.stateDirty || cen.readOnly {
		return nil
	}
	err := cen.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCensusStateKey, encodeState(cen.numSamples, cen.numFailed))
	})
	if err == nil {
		cen.stateDirty = false
	}
	return err
}

func encodeState(numSamples, numFailed uint64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:], numSamples)
	binary.BigEndian.PutUint64(buf[8:], numFailed)
	return buf
}

// Close flushes and releases the census.
func (cen *Census) Close() error {
	var err error
	if cen.db != nil {
		err = cen.flushState()
		cen.db.Close()
		cen.db = nil
	}
	cen.layouts.Close()
	return err
}

// NumSamples returns the number of maps recorded so far, including failed ones.
func (cen *Census) NumSamples() uint64 {
	return cen.numSamples
}

// NumFailed returns the number of maps whose analysis failed.
func (cen *Census) NumFailed() uint64 {
	return cen.numFailed
}

// Record adds one occurrence of the given signature.
// The signature's counter and the sample totals are committed together.
func (cen *Census) Record(sig Signature) error {
	if cen.readOnly {
		return errors.New("census: read-only")
	}

	var keyBuf [signatureKeyLen]byte
	key := sig.appendKey(keyBuf[:0])

	err := cen.db.Update(func(txn *badger.Txn) error {
		count := uint64(0)
		item, err := txn.Get(key)
		if err == nil {
			err = item.Value(func(val []byte) error {
				count = binary.BigEndian.Uint64(val)
				return nil
			})
		} else if err == badger.ErrKeyNotFound {
			err = nil
		}
		if err != nil {
			return err
		}

		var val [8]byte
		binary.BigEndian.PutUint64(val[:], count+1)
		if err = txn.Set(key, val[:]); err != nil {
			return err
		}
		return txn.Set(gCensusStateKey, encodeState(cen.numSamples+1, cen.numFailed))
	})
	if err != nil {
		return errors.Wrapf(err, "census: record %v", sig)
	}

	cen.numSamples++
	cen.stateDirty = false
	return nil
}

func (cen *Census) recordFailure() {
	cen.numSamples++
	cen.numFailed++
	cen.stateDirty = true
}

// Count returns how many times the given signature was recorded.
func (cen *Census) Count(sig Signature) (uint64, error) {
	var keyBuf [signatureKeyLen]byte
	key := sig.appendKey(keyBuf[:0])

	count := uint64(0)
	err := cen.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			count = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	return count, err
}

// Histogram returns every recorded signature, most frequent first (ties in signature order).
func (cen *Census) Histogram() ([]Entry, error) {
	byCount := redblacktree.Tree{
		Comparator: func(A, B interface{}) int {
			A0 := A.(Entry)
			B0 := B.(Entry)
			if A0.Count != B0.Count {
				if A0.Count > B0.Count {
					return -1
				}
				return 1
			}
			var bufA, bufB [signatureKeyLen]byte
			return bytes.Compare(A0.appendKey(bufA[:0]), B0.appendKey(bufB[:0]))
		},
	}

	err := cen.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.Prefix = gSignaturePrefix
		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Seek(gSignaturePrefix); it.ValidForPrefix(gSignaturePrefix); it.Next() {
			item := it.Item()
			key := item.Key()
			if len(key) != signatureKeyLen {
				continue
			}
			entry := Entry{
				Signature: signatureFromKey(key),
			}
			err := item.Value(func(val []byte) error {
				entry.Count = binary.BigEndian.Uint64(val)
				return nil
			})
			if err != nil {
				return err
			}
			byCount.Put(entry, nil)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "census: histogram")
	}

	entries := make([]Entry, 0, byCount.Size())
	for it := byCount.Iterator(); it.Next(); {
		entries = append(entries, it.Key().(Entry))
	}
	return entries, nil
}

type sample struct {
	sig    Signature
	layout []byte
	err    error
}

// Survey analyses opts.Samples random maps and records the signature of each.
//
// Each map is populated from its own seed, so a survey's outcome does not depend on the number of workers.
// Maps whose analysis fails (e.g. ErrInconsistentRegion from a custom template) are tallied as failed.
func (cen *Census) Survey(ctx context.Context, opts SurveyOpts) (res SurveyResult, err error) {
	if opts.N <= 0 || opts.M <= 0 {
		return res, errors.Wrapf(goknots.ErrOutOfBounds, "survey map size %dx%d", opts.N, opts.M)
	}
	if _, err = libknots.TopologyOf(opts.Kind); err != nil {
		return res, err
	}
	if len(opts.Templates) == 0 {
		return res, errors.Wrap(goknots.ErrNilTemplate, "survey has no templates")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Failures are only tallied in memory until flushed.
	defer func() {
		if ferr := cen.flushState(); ferr != nil && err == nil {
			err = errors.Wrap(ferr, "census: flush")
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	seeds := make(chan int64)
	samples := make(chan sample, workers)

	go func() {
		defer close(seeds)
		for i := 0; i < opts.Samples; i++ {
			select {
			case seeds <- opts.Seed + int64(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	wg := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range seeds {
				s := analyse(opts, seed)
				select {
				case samples <- s:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(samples)
	}()

	for s := range samples {
		if s.err != nil {
			klog.V(1).Infof("census: %v", s.err)
			cen.recordFailure()
			res.Failed++
		} else if err = cen.Record(s.sig); err != nil {
			return res, err
		}
		res.Samples++

		if len(s.layout) > 0 {
			added, err := cen.layouts.TryAdd(s.layout)
			if err != nil {
				return res, err
			}
			if added {
				res.Distinct++
			}
		}

		if res.Samples%1000 == 0 {
			klog.V(1).Infof("census: %d of %d maps surveyed", res.Samples, opts.Samples)
		}
	}

	if err = ctx.Err(); err != nil {
		return res, err
	}
	klog.V(1).Infof("census: surveyed %d %dx%d %v maps (%d distinct layouts, %d failed)", res.Samples, opts.N, opts.M, opts.Kind, res.Distinct, res.Failed)
	return res, nil
}

func analyse(opts SurveyOpts, seed int64) (s sample) {
	M, err := libknots.NewMapOfKind(opts.N, opts.M, opts.Kind)
	if err == nil {
		err = libknots.Populate(M, opts.Templates, rand.New(rand.NewSource(seed)))
		s.layout = M.LayoutKey()
	}
	var curves goknots.CurveCounts
	var regions goknots.RegionCounts
	if err == nil {
		curves, err = M.CountCurves()
	}
	if err == nil {
		regions, err = M.CountRegions()
	}
	if err != nil {
		s.err = errors.Wrapf(err, "seed %d", seed)
		return s
	}
	s.sig = SignatureOf(curves, regions)
	return s
}
