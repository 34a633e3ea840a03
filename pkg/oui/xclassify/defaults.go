package xclassify

import "sync"

var (
	defaultOnce  sync.Once
	defaultRules Rules
)

// DefaultRules 返回内置规则列表的副本。
//
// 列表顺序：完整地址表、OUI 表、正则表、本地管理位。
func DefaultRules() Rules {
	defaultOnce.Do(func() {
		defaultRules = mustBuild()
	})
	out := make(Rules, len(defaultRules))
	copy(out, defaultRules)
	return out
}

func mustBuild() Rules {
	var rs Rules
	add := func(r Rule, err error) {
		if err != nil {
			panic(err)
		}
		rs = append(rs, r)
	}

	add(ExactAddress("FFFFFFFFFFFF", "Broadcast", ClassBroadcast))
	add(ExactAddress("0180C200000E", "Link Layer Discovery Protocol (LLDP)", ClassProtocolReserved))
	add(ExactAddress("01000CCCCCAB", "Cisco UniDirectional Link Detection (UDLD)", ClassProtocolReserved))
	add(ExactAddress("01000CCCCCCC", "Cisco CDP/VTP/DTP", ClassProtocolReserved))
	add(ExactAddress("01000CCCCCAA", "Cisco Port Aggregation Protocol (PAgP)", ClassProtocolReserved))
	add(ExactAddress("00E02B000004", "Extreme Networks Standby Protocol", ClassProtocolReserved))

	add(ExactOUI("FFFFFF", "Broadcast", ClassBroadcast))
	add(ExactOUI("0180C2", "STP/LLDP/CFM", ClassProtocolReserved))
	add(ExactOUI("01005E", "IPv4 Multicast", ClassProtocolReserved))
	add(ExactOUI("01000C", "Cisco CDP/PAgP/VTP/DTP/UDLD", ClassProtocolReserved))
	add(ExactOUI("011B19", "Precision Time Protocol (PTP)", ClassProtocolReserved))

	add(Pattern(`3333[0-9A-F]{2}`, "IPv6 Multicast"))
	add(Pattern(`0180C200000[0-9A-F]`, "Spanning Tree Protocol (STP)"))
	add(Pattern(`00005E0001[0-9A-F]{2}`, "Virtual Router Redundancy Protocol (VRRP)"))
	add(Pattern(`00000C07AC[0-9A-F]{2}`, "Cisco HSRP/GLBP"))

	rs = append(rs, LocalBit())
	return rs
}
