package input

import (
	"encoding/xml"
	"os"

	"github.com/pkg/errors"
)

// 未在边/车道上标注限速时的默认值（米/秒）
const defaultSpeed = 30

// SUMO风格net.xml的映射结构，只取本系统需要的字段

type xmlLane struct {
	Index  int     `xml:"index,attr"`
	Speed  float64 `xml:"speed,attr"`
	Length float64 `xml:"length,attr"`
}

type xmlEdge struct {
	ID       string    `xml:"id,attr"`
	Function string    `xml:"function,attr"`
	Speed    float64   `xml:"speed,attr"`
	Lanes    []xmlLane `xml:"lane"`
}

type xmlConnection struct {
	From     string `xml:"from,attr"`
	To       string `xml:"to,attr"`
	FromLane int    `xml:"fromLane,attr"`
	ToLane   int    `xml:"toLane,attr"`
	Via      string `xml:"via,attr"`
}

type xmlNet struct {
	XMLName     xml.Name        `xml:"net"`
	Edges       []xmlEdge       `xml:"edge"`
	Connections []xmlConnection `xml:"connection"`
}

// LoadNetXML 从SUMO风格net.xml加载路网描述
// 算法说明：
// 1. 边长度取第一条车道的长度，车道数取lane子元素个数
// 2. 限速优先取边属性，缺失时取第一条车道属性，仍缺失时取默认值
// 3. connection原样保留via，内部边的推导交给拓扑构建
func LoadNetXML(path string) (*NetData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "input: failed to read %s", path)
	}
	var net xmlNet
	if err := xml.Unmarshal(raw, &net); err != nil {
		return nil, errors.Wrapf(err, "input: failed to parse %s", path)
	}

	data := &NetData{}
	for _, e := range net.Edges {
		if len(e.Lanes) == 0 {
			return nil, errors.Errorf("input: edge %s has no lane", e.ID)
		}
		speed := e.Speed
		if speed == 0 {
			speed = e.Lanes[0].Speed
		}
		if speed == 0 {
			speed = defaultSpeed
		}
		data.Edges = append(data.Edges, Edge{
			ID:       e.ID,
			Length:   e.Lanes[0].Length,
			NumLanes: len(e.Lanes),
			Speed:    speed,
		})
	}
	for _, c := range net.Connections {
		data.Connections = append(data.Connections, Connection{
			From:     c.From,
			FromLane: c.FromLane,
			To:       c.To,
			ToLane:   c.ToLane,
			Via:      c.Via,
		})
	}
	return data, nil
}
