package state

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/stratohq/strato/pkg/types"
)

var (
	bucketNodes     = []byte("nodes")
	bucketWorkloads = []byte("workloads")
)

// BoltManager implements Manager on a local bbolt file
type BoltManager struct {
	db *bolt.DB
}

// NewBoltManager opens (or creates) the checkpoint database under dataDir
func NewBoltManager(dataDir string) (*BoltManager, error) {
	dbPath := filepath.Join(dataDir, "strato.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketNodes, bucketWorkloads} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltManager{db: db}, nil
}

// Close closes the database
func (m *BoltManager) Close() error {
	return m.db.Close()
}

// SaveNode upserts a node record
func (m *BoltManager) SaveNode(node *types.ClusterNode) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		return b.Put([]byte(node.ID), data)
	})
}

// DeleteNode removes a node record
func (m *BoltManager) DeleteNode(nodeID string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).Delete([]byte(nodeID))
	})
}

// SaveWorkload upserts a scheduled workload record
func (m *BoltManager) SaveWorkload(w *types.ScheduledWorkload) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorkloads)
		data, err := json.Marshal(w)
		if err != nil {
			return err
		}
		return b.Put([]byte(w.Workload.Spec.ID), data)
	})
}

// DeleteWorkload removes a workload record
func (m *BoltManager) DeleteWorkload(workloadID string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWorkloads).Delete([]byte(workloadID))
	})
}

// LoadNodes returns all persisted node records
func (m *BoltManager) LoadNodes() ([]*types.ClusterNode, error) {
	var nodes []*types.ClusterNode
	err := m.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).ForEach(func(k, v []byte) error {
			var node types.ClusterNode
			if err := json.Unmarshal(v, &node); err != nil {
				return err
			}
			nodes = append(nodes, &node)
			return nil
		})
	})
	return nodes, err
}

// LoadWorkloads returns all persisted workload records
func (m *BoltManager) LoadWorkloads() ([]*types.ScheduledWorkload, error) {
	var workloads []*types.ScheduledWorkload
	err := m.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWorkloads).ForEach(func(k, v []byte) error {
			var w types.ScheduledWorkload
			if err := json.Unmarshal(v, &w); err != nil {
				return err
			}
			workloads = append(workloads, &w)
			return nil
		})
	})
	return workloads, err
}
