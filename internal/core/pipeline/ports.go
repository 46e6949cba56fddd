package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"neoport/internal/core/model"
	"neoport/internal/pkg/logger"
)

// Top100Ports 常用 TCP 端口
var Top100Ports = []int{
	7, 9, 13, 21, 22, 23, 25, 26, 37, 53, 79, 80, 81, 88, 106, 110, 111, 113, 119, 135,
	139, 143, 144, 179, 199, 389, 427, 443, 444, 445, 465, 513, 514, 515, 543, 544, 548, 554, 587, 631,
	646, 873, 990, 993, 995, 1025, 1026, 1027, 1028, 1029, 1110, 1433, 1720, 1723, 1755, 1900, 2000, 2001, 2049, 2121,
	2717, 3000, 3128, 3306, 3389, 3986, 4899, 5000, 5009, 5051, 5060, 5101, 5190, 5357, 5432, 5631, 5666, 5800, 5900, 6000,
	6001, 6646, 7070, 8000, 8008, 8009, 8080, 8081, 8443, 8888, 9100, 9999, 10000, 32768, 49152, 49153, 49154, 49155, 49156, 49157,
}

// ParsePortList 解析端口表达式
// 支持 "80"、"8000-8010"、"top100"，逗号分隔；保持输入顺序，不去重
// 单个端口越界不报错，扫描时作为 Errored 结果返回
func ParsePortList(spec string) ([]int, error) {
	var ports []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.EqualFold(part, "top100") {
			ports = append(ports, Top100Ports...)
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("invalid port range %q", part)
			}
			if !model.ValidPort(start) || !model.ValidPort(end) || start > end {
				return nil, fmt.Errorf("port range %q out of bounds [%d, %d]", part, model.MinPort, model.MaxPort)
			}
			for p := start; p <= end; p++ {
				ports = append(ports, p)
			}
			continue
		}

		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q", part)
		}
		ports = append(ports, p)
	}

	if len(ports) == 0 {
		return nil, fmt.Errorf("no ports in %q", spec)
	}
	return ports, nil
}

// LoadPortFile 读取端口列表文件，每行一个端口
// 只接受纯数字行，空行、注释和其他内容直接跳过
func LoadPortFile(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open port file: %w", err)
	}
	defer file.Close()

	var ports []int
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !isDigits(line) {
			if line != "" && !strings.HasPrefix(line, "#") {
				logger.Debugf("port file %s:%d skipped: %q", path, lineNo, line)
			}
			continue
		}
		p, err := strconv.Atoi(line)
		if err != nil {
			// 位数过多溢出 int，当作越界端口
			p = model.MaxPort + 1
		}
		ports = append(ports, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read port file: %w", err)
	}

	return ports, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
