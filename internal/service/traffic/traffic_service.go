// Package traffic 提供全局访问量计数器
package traffic

import (
	"context"

	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrafficService 访问量服务接口
type TrafficService interface {
	// Get 读取当前计数
	Get(ctx context.Context) (int64, error)

	// IncrementAndGet 计数加一并返回新值
	IncrementAndGet(ctx context.Context) (int64, error)
}

type trafficService struct {
	db *gorm.DB
}

// NewTrafficService 创建访问量服务实例
func NewTrafficService(db *gorm.DB) TrafficService {
	return &trafficService{db: db}
}

func (s *trafficService) Get(ctx context.Context) (int64, error) {
	var counter database.Counter
	err := s.db.WithContext(ctx).
		Where("name = ?", database.TrafficCounterName).
		Limit(1).Find(&counter).Error
	if err != nil {
		return 0, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return counter.Value, nil
}

// IncrementAndGet 在一个事务内完成自增和读取
// 自增使用单条 UPDATE value = value + 1，计数行缺失时先插入
func (s *trafficService) IncrementAndGet(ctx context.Context) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&database.Counter{Name: database.TrafficCounterName}).Error; err != nil {
			return err
		}

		if err := tx.Model(&database.Counter{}).
			Where("name = ?", database.TrafficCounterName).
			Update("value", gorm.Expr("value + ?", 1)).Error; err != nil {
			return err
		}

		var counter database.Counter
		if err := tx.Where("name = ?", database.TrafficCounterName).First(&counter).Error; err != nil {
			return err
		}
		value = counter.Value
		return nil
	})
	if err != nil {
		return 0, errors.ErrDatabaseUpdateError.WithOriginalError(err)
	}
	return value, nil
}
