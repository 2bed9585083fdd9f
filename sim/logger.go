package sim

import "github.com/sirupsen/logrus"

// log 合成后端模块的日志记录器
var log = logrus.WithField("module", "sim")
