package listener

import "github.com/lhanjian/yarhs/pkg/domain"

var errBindFailure = domain.ErrBindFailure
