package savings

import "errors"

var ErrInsufficientSavings = errors.New("savings balance is lower than the requested withdrawal")
