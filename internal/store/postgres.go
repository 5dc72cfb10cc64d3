package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRow is the single shared table backing every row kind.
type ItemRow struct {
	PK        string    `gorm:"primaryKey;column:pk;type:text"`
	SK        string    `gorm:"primaryKey;column:sk;type:text"`
	Kind      string    `gorm:"column:kind;type:text;index;not null"`
	Attrs     Item      `gorm:"column:attrs;type:jsonb;serializer:json;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ItemRow) TableName() string {
	return "items"
}

// PostgresStore 基于 gorm 的单表实现，条件写入由数据库的 UPDATE ... WHERE 原子完成
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) PutItem(ctx context.Context, item Item, ifNotExists bool) error {
	k := item.Key()
	if k.PK == "" || k.SK == "" {
		return fmt.Errorf("put item: missing primary key")
	}
	row := ItemRow{PK: k.PK, SK: k.SK, Attrs: item}
	if v, ok := item[AttrKind]; ok && v.S != nil {
		row.Kind = *v.S
	}

	tx := s.db.WithContext(ctx)
	if ifNotExists {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConditionFailed
		}
		return nil
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *PostgresStore) GetItem(ctx context.Context, key Key) (Item, error) {
	var row ItemRow
	err := s.db.WithContext(ctx).Where("pk = ? AND sk = ?", key.PK, key.SK).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Attrs, nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, key Key, set Item, cond Condition) error {
	patch := make(Item, len(set))
	for k, v := range set {
		if k == AttrPK || k == AttrSK || k == AttrKind {
			continue
		}
		patch[k] = v
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	tx := s.db.WithContext(ctx).Model(&ItemRow{}).Where("pk = ? AND sk = ?", key.PK, key.SK)
	tx, err = applyCondition(tx, cond)
	if err != nil {
		return err
	}

	res := tx.Updates(map[string]interface{}{
		"attrs": gorm.Expr("attrs || ?::jsonb", string(raw)),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

// applyCondition 将条件子句翻译为 attrs 上的 jsonb 谓词
func applyCondition(tx *gorm.DB, cond Condition) (*gorm.DB, error) {
	for _, cl := range cond {
		switch cl.Op {
		case OpEquals:
			v, err := json.Marshal(cl.Value)
			if err != nil {
				return nil, fmt.Errorf("encode condition on %s: %w", cl.Attr, err)
			}
			tx = tx.Where("attrs -> ? = ?::jsonb", cl.Attr, string(v))
		case OpExists:
			tx = tx.Where("attrs -> ? IS NOT NULL", cl.Attr)
		case OpNotExists:
			tx = tx.Where("attrs -> ? IS NULL", cl.Attr)
		default:
			return nil, fmt.Errorf("unsupported condition op %d", cl.Op)
		}
	}
	return tx, nil
}

func (s *PostgresStore) Query(ctx context.Context, partition string) ([]Item, error) {
	var rows []ItemRow
	if err := s.db.WithContext(ctx).Where("pk = ?", partition).Order("sk ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.Attrs)
	}
	return items, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
