package input

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var log = logrus.WithField("module", "input")

// Edge 路网描述中的一条边
// 说明：ID以":"开头的边为路口内部边
type Edge struct {
	ID       string  `bson:"id" json:"id"`
	Length   float64 `bson:"length" json:"length"`
	NumLanes int     `bson:"num_lanes" json:"num_lanes"`
	Speed    float64 `bson:"speed" json:"speed"`
}

// Connection 路网描述中的一条有向车道连接
// 说明：Via为经过的路口内部车道名（形如":J_2_0"），可为空
type Connection struct {
	From     string `bson:"from" json:"from"`
	FromLane int    `bson:"from_lane" json:"from_lane"`
	To       string `bson:"to" json:"to"`
	ToLane   int    `bson:"to_lane" json:"to_lane"`
	Via      string `bson:"via,omitempty" json:"via,omitempty"`
}

// NetData 完整的路网描述
type NetData struct {
	Edges       []Edge       `json:"edges"`
	Connections []Connection `json:"connections"`
}

// Init 加载路网描述
// 功能：根据配置从文件或MongoDB加载路网数据
// 参数：c-配置对象，cacheDir-缓存目录（空串禁用缓存）
// 算法说明：
// 1. 文件优先：.xml按SUMO net.xml解析，其余按JSON解析
// 2. 否则从MongoDB加载，启用缓存时先尝试缓存、下载后回写缓存
// 3. 校验边ID唯一性
func Init(c config.Config, cacheDir string) (*NetData, error) {
	if !preCheckCache(cacheDir) {
		cacheDir = ""
	}

	var data *NetData
	var err error
	p := c.Input.Network
	if p.File != "" {
		if strings.HasSuffix(p.File, ".xml") {
			data, err = LoadNetXML(p.File)
		} else {
			data, err = loadJSON(p.File)
		}
	} else {
		data, err = loadWithCache(c.Input.URI, p, cacheDir)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(data.Edges))
	for _, e := range data.Edges {
		if _, ok := seen[e.ID]; ok {
			return nil, errors.Errorf("input: duplicated edge id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	log.Infof("Edge: %v", len(data.Edges))
	log.Infof("Connection: %v", len(data.Connections))
	return data, nil
}

// loadJSON 从JSON文件加载路网描述
func loadJSON(path string) (*NetData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "input: failed to read %s", path)
	}
	var data NetData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(err, "input: failed to parse %s", path)
	}
	return &data, nil
}

// document MongoDB中的路网文档
// 说明：每个文档携带class字段标识负载类型
type document struct {
	Class      string      `bson:"class"`
	Edge       *Edge       `bson:"edge,omitempty"`
	Connection *Connection `bson:"connection,omitempty"`
}

// loadWithCache 从MongoDB加载路网描述，支持JSON文件缓存
// 算法说明：
// 1. 缓存命中则直接返回缓存内容
// 2. only_cache时缓存缺失视为错误
// 3. 下载完成后回写缓存（失败仅告警）
func loadWithCache(uri string, p config.InputPath, cacheDir string) (*NetData, error) {
	cachePath := ""
	if cacheDir != "" {
		cachePath = filepath.Join(cacheDir, p.GetCachePath())
		if _, err := os.Stat(cachePath); err == nil {
			log.Infof("load network from cache %s", cachePath)
			return loadJSON(cachePath)
		}
	}
	if p.OnlyCache {
		return nil, errors.Errorf("input: only_cache is set but cache %s does not exist", p.GetCachePath())
	}

	log.Infof("start fetching from %s.%s", p.DB, p.Col)
	data, err := downloadFromMongo(uri, p)
	if err != nil {
		return nil, err
	}
	log.Infof("finish fetching from %s.%s", p.DB, p.Col)

	if cachePath != "" {
		if raw, err := json.Marshal(data); err != nil {
			log.Warnf("failed to encode cache: %v", err)
		} else if err := os.WriteFile(cachePath, raw, 0644); err != nil {
			log.Warnf("failed to write cache %s: %v", cachePath, err)
		}
	}
	return data, nil
}

// downloadFromMongo 从MongoDB下载路网描述
func downloadFromMongo(uri string, p config.InputPath) (*NetData, error) {
	if uri == "" {
		return nil, errors.New("input: no network file and no mongo uri")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "input: failed to connect mongo")
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(p.GetDb()).Collection(p.GetColl())
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrapf(err, "input: failed to query %s.%s", p.DB, p.Col)
	}
	defer cursor.Close(ctx)

	data := &NetData{}
	for cursor.Next(ctx) {
		var doc document
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "input: failed to decode document")
		}
		switch doc.Class {
		case "edge":
			if doc.Edge == nil {
				return nil, errors.New("input: edge document without edge payload")
			}
			data.Edges = append(data.Edges, *doc.Edge)
		case "connection":
			if doc.Connection == nil {
				return nil, errors.New("input: connection document without connection payload")
			}
			data.Connections = append(data.Connections, *doc.Connection)
		default:
			log.Warnf("unknown document class %s", doc.Class)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "input: cursor error")
	}
	return data, nil
}

// preCheckCache 预检查缓存目录
// 说明：目录无效时禁用缓存而不是报错
func preCheckCache(cacheDir string) bool {
	if cacheDir == "" {
		log.Info("disable input cache")
		return false
	}
	if stat, err := os.Stat(cacheDir); err == nil && stat.IsDir() {
		log.Infof("enable input cache at %s", cacheDir)
		return true
	}
	log.Errorf("disable input cache because invalid dir %s (not exist or file)", cacheDir)
	return false
}
