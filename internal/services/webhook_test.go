package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockAfterSaleClampsAtZero(t *testing.T) {
	// 并发支付可能把库存买穿，扣减表达式必须在数据库侧钳位到 0
	expr := stockAfterSale(3)

	assert.Equal(t, "GREATEST(stock - ?, 0)", expr.SQL)
	assert.Equal(t, []interface{}{3}, expr.Vars)
}
