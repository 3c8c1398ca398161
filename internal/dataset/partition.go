package dataset

import "fmt"

// Partition returns this replica's strided share of the full record sequence:
// indices congruent to rank modulo worldSize, in dataset order. Across all
// ranks the shares are disjoint and cover the dataset exactly, and the result
// is deterministic for a fixed partition descriptor.
func Partition(records []*Record, worldSize, rank int) ([]*Record, error) {
	if worldSize < 1 {
		return nil, fmt.Errorf("dataset: world size must be at least 1, got %d", worldSize)
	}
	if rank < 0 || rank >= worldSize {
		return nil, fmt.Errorf("dataset: rank %d out of range for world size %d", rank, worldSize)
	}

	share := make([]*Record, 0, (len(records)+worldSize-1)/worldSize)
	for i := rank; i < len(records); i += worldSize {
		share = append(share, records[i])
	}
	return share, nil
}
