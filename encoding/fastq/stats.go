package fastq

import (
	"fmt"
	"io"
	"sort"
)

// Stats summarizes the read lengths of a FASTQ file.
type Stats struct {
	// Count is the number of reads.
	Count int
	// TotalBases is the summed length of all reads.
	TotalBases int
	// N50 is the largest length L such that reads of length >= L hold at
	// least half of TotalBases.
	N50 int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d reads, %d bases, N50 %d", s.Count, s.TotalBases, s.N50)
}

// ComputeStats returns the Stats of reads with the given lengths.
func ComputeStats(lengths []int) Stats {
	s := Stats{Count: len(lengths)}
	sorted := append([]int(nil), lengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, n := range sorted {
		s.TotalBases += n
	}
	acc := 0
	for _, n := range sorted {
		acc += n
		if 2*acc >= s.TotalBases {
			s.N50 = n
			break
		}
	}
	return s
}

// ReadSeqs reads every sequence from FASTQ data in r, along with their
// statistics.
func ReadSeqs(r io.Reader) ([]string, Stats, error) {
	var (
		sc   = NewScanner(r)
		read Read
		seqs []string
	)
	for sc.Scan(&read) {
		seqs = append(seqs, read.Seq)
	}
	if err := sc.Err(); err != nil {
		return nil, Stats{}, err
	}
	return seqs, sc.Stats(), nil
}
