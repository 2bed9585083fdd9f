package edge

import "github.com/sirupsen/logrus"

// log 路网拓扑模块的日志记录器
var log = logrus.WithField("module", "edge")
