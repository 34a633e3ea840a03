// Package oui 提供 IEEE 厂商识别相关的子包。
//
// 子包列表：
//   - xclassify: 地址分类规则（广播、组播、本地管理、虚拟化、协议专用等）
//   - xregistry: IEEE 注册表解析、前缀存储与最长前缀匹配
//   - xresolve: 解析引擎，组合分类、注册表与在线兜底
//   - xlookup: maclookup.app 在线查询客户端（限流、重试、熔断）
//   - xfetch: IEEE 注册表文件下载
//   - xsnapshot: 注册表快照的编码与持久化（CBOR + zstd）
//   - xrefresh: 启动加载、定时刷新与目录监视
//
// 依赖方向：xclassify、xregistry 只依赖 util；xresolve 在其上组合；
// xfetch、xsnapshot、xrefresh 负责数据的获取与更新。
package oui
