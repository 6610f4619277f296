package data

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"point-service/internal/biz"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketUserPoint    = []byte("user_point")
	bucketPointHistory = []byte("point_history")
)

// BoltStore BoltDB 嵌入式存储，实现 BalanceStore / HistoryLog / UserLister
//
// user_point 桶以用户ID（大端 8 字节）为 key 存储余额 JSON；
// point_history 桶下每个用户一个子桶，key 为流水ID（大端），遍历即插入顺序。
// 流水ID取自 point_history 桶的 NextSequence，全局单调递增。
type BoltStore struct {
	db *bolt.DB
}

type boltUserPoint struct {
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type boltPointHistory struct {
	Amount    int64               `json:"amount"`
	Type      biz.TransactionType `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewBoltStore 打开（或创建）BoltDB 文件并确保桶存在
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketUserPoint); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketPointHistory)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close 释放文件锁
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// ReadBalance 获取用户余额，不存在时返回 nil
func (s *BoltStore) ReadBalance(_ context.Context, userID int64) (*biz.UserPoint, error) {
	var result *biz.UserPoint
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketUserPoint).Get(itob(userID))
		if v == nil {
			return nil
		}
		var p boltUserPoint
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		result = &biz.UserPoint{UserID: userID, Balance: p.Balance, UpdatedAt: p.UpdatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WriteBalance 写入余额
func (s *BoltStore) WriteBalance(_ context.Context, userID int64, balance int64) (*biz.UserPoint, error) {
	p := boltUserPoint{Balance: balance, UpdatedAt: time.Now().UTC()}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUserPoint).Put(itob(userID), data)
	})
	if err != nil {
		return nil, err
	}
	return &biz.UserPoint{UserID: userID, Balance: p.Balance, UpdatedAt: p.UpdatedAt}, nil
}

// Append 追加流水
func (s *BoltStore) Append(_ context.Context, userID int64, amount int64, txType biz.TransactionType, timestamp time.Time) (*biz.PointHistory, error) {
	var result *biz.PointHistory
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketPointHistory)
		seq, err := root.NextSequence()
		if err != nil {
			return err
		}
		b, err := root.CreateBucketIfNotExists(itob(userID))
		if err != nil {
			return err
		}

		h := boltPointHistory{Amount: amount, Type: txType, Timestamp: timestamp}
		data, err := json.Marshal(h)
		if err != nil {
			return err
		}
		id := int64(seq)
		if err := b.Put(itob(id), data); err != nil {
			return err
		}
		result = &biz.PointHistory{ID: id, UserID: userID, Amount: amount, Type: txType, Timestamp: timestamp}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadAll 按插入顺序返回用户流水
func (s *BoltStore) ReadAll(_ context.Context, userID int64) ([]*biz.PointHistory, error) {
	histories := []*biz.PointHistory{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPointHistory).Bucket(itob(userID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var h boltPointHistory
			if err := json.Unmarshal(v, &h); err != nil {
				return err
			}
			histories = append(histories, &biz.PointHistory{
				ID:        btoi(k),
				UserID:    userID,
				Amount:    h.Amount,
				Type:      h.Type,
				Timestamp: h.Timestamp,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return histories, nil
}

// ListUserIDs 列出所有用户ID（按 key 升序）
func (s *BoltStore) ListUserIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUserPoint).ForEach(func(k, _ []byte) error {
			ids = append(ids, btoi(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
