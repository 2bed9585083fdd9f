package linear

import "github.com/sirupsen/logrus"

// log 全局坐标模块的日志记录器
var log = logrus.WithField("module", "linear")
