// Package xclassify 提供在注册表查询之前生效的地址分类规则。
//
// 规则是带类型标签的有序列表，按顺序求值，第一条命中即返回：
//
//  1. [KindExactAddress]：完整地址精确匹配（广播、LLDP、CDP 等）
//  2. [KindExactOUI]：6 位 OUI 精确匹配（STP、IPv4 组播映射等整块保留）
//  3. [KindPattern]：正则匹配子范围（IPv6 组播、VRRP、HSRP/GLBP）
//  4. [KindLocalBit]：首字节 bit 1（U/L 位）为 1 的本地管理地址
//
// 顺序本身就是契约，[DefaultRules] 返回的列表可以直接在测试中断言。
//
// # 设计决策
//
//   - 正则在编译时强制以 ^ 锚定到地址开头，避免在地址中间误命中
//   - 规则只接受规范化后的大写数字串，规范化由 xmac 负责
package xclassify
