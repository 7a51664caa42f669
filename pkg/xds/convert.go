package xds

import (
	"time"

	"github.com/lhanjian/yarhs/pkg/domain"
)

func performanceFromResource(res PerformanceResource) domain.PerformanceConfig {
	cfg := domain.PerformanceConfig{
		KeepAliveTimeout: time.Duration(res.KeepAliveTimeout) * time.Second,
		ReadTimeout:      time.Duration(res.ReadTimeout) * time.Second,
		WriteTimeout:     time.Duration(res.WriteTimeout) * time.Second,
	}
	if res.MaxConnections != nil {
		v := int64(*res.MaxConnections)
		cfg.MaxConnections = &v
	}
	return cfg
}

func performanceToResource(cfg domain.PerformanceConfig) PerformanceResource {
	res := PerformanceResource{
		KeepAliveTimeout: uint64(cfg.KeepAliveTimeout / time.Second),
		ReadTimeout:      uint64(cfg.ReadTimeout / time.Second),
		WriteTimeout:     uint64(cfg.WriteTimeout / time.Second),
	}
	if cfg.MaxConnections != nil {
		v := uint64(*cfg.MaxConnections)
		res.MaxConnections = &v
	}
	return res
}
