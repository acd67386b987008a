// Package catalog holds the static room/SKU catalog and the fixed set of
// issue kinds evaluators can tag. The catalog is compiled in; rooms and SKUs
// never change at runtime.
package catalog

// SKU is one product unit within a room.
type SKU struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Room is one recorded live-stream session with its SKU list.
type Room struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	VideoURL string `json:"videoUrl"`
	SKUs     []SKU  `json:"skus"`
}

// IssueKind is one defect category an evaluator may tag on an evaluation.
type IssueKind struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// IssueOther requires a free-text description on the evaluation.
const IssueOther = "other"

// IssueMismatch is the representative signal surfaced in the room overview.
const IssueMismatch = "mismatch"

var rooms = []Room{
	{
		ID:       "fashion",
		Name:     "大时尚直播间",
		VideoURL: "https://shi-1318541159.cos.ap-guangzhou.myqcloud.com/zbtest-1.mp4",
		SKUs: []SKU{
			{ID: "f-001", Name: "时尚连衣裙", Price: 299},
			{ID: "f-002", Name: "休闲牛仔裤", Price: 199},
			{ID: "f-003", Name: "运动T恤", Price: 99},
			{ID: "f-004", Name: "高跟鞋", Price: 399},
			{ID: "f-005", Name: "太阳镜", Price: 159},
		},
	},
	{
		ID:       "supermarket",
		Name:     "大商超直播间",
		VideoURL: "https://shi-1318541159.cos.ap-guangzhou.myqcloud.com/zbtest-2.mp4",
		SKUs: []SKU{
			{ID: "s-001", Name: "有机大米 5kg", Price: 68},
			{ID: "s-002", Name: "食用油 5L", Price: 89},
			{ID: "s-003", Name: "洗衣液 2kg", Price: 45},
			{ID: "s-004", Name: "抽纸 12包", Price: 29},
			{ID: "s-005", Name: "进口牛奶 1箱", Price: 78},
		},
	},
	{
		ID:       "home_appliance",
		Name:     "家电家具直播间",
		VideoURL: "https://shi-1318541159.cos.ap-guangzhou.myqcloud.com/zbtest-3.mp4",
		SKUs: []SKU{
			{ID: "h-001", Name: "欧普照明灯具", Price: 138},
			{ID: "h-002", Name: "美的电风扇", Price: 199},
			{ID: "h-003", Name: "XX 吸尘器", Price: 399},
			{ID: "h-004", Name: "智能电饭煲", Price: 299},
			{ID: "h-005", Name: "实木餐椅", Price: 158},
		},
	},
	{
		ID:       "3c_digital",
		Name:     "3C 数码直播间",
		VideoURL: "https://shi-1318541159.cos.ap-guangzhou.myqcloud.com/zbtest-4.mp4",
		SKUs: []SKU{
			{ID: "d-001", Name: "无线蓝牙耳机", Price: 199},
			{ID: "d-002", Name: "智能手环", Price: 149},
			{ID: "d-003", Name: "高速充电宝", Price: 89},
			{ID: "d-004", Name: "手机支架", Price: 29},
			{ID: "d-005", Name: "机械键盘", Price: 299},
		},
	},
}

var issueKinds = []IssueKind{
	{
		ID:          "mismatch",
		Label:       "图文不匹配问题",
		Description: "虽然图是商品，但与当前口播句子的“重点”不匹配。",
	},
	{
		ID:          "carousel",
		Label:       "轮播图片问题",
		Description: "有头图轮播现象：不同图片在一个 KT 板中轮播。",
	},
	{
		ID:          "invalid_flash",
		Label:       "无效空闪问题",
		Description: "图片弹出，但对应口播文稿是一句毫无信息量的废话。例如：在讲解卖点时，突然弹出一张产品参数图且图与任何关键词都挂不上钩。",
	},
	{
		ID:          "duration",
		Label:       "视频时长问题",
		Description: "在口播讲解卖点的周期内，素材提前消失或一闪而过，导致图片展示时长短于用户获取信息所需时长，造成视听体验断层。",
	},
	{
		ID:          "ux",
		Label:       "用户体验问题",
		Description: "对应口播的 SKU 脚本中，KT 板展示的信息不足，不能通过声画配合充分传达商品卖点信息。",
	},
	{
		ID:          "other",
		Label:       "其他问题（需要说明）",
		Description: "",
	},
}

// Rooms returns all catalog rooms in their fixed enumeration order.
func Rooms() []Room {
	return rooms
}

// RoomByID returns the room with the given id, or nil when the id is unknown.
func RoomByID(id string) *Room {
	for i := range rooms {
		if rooms[i].ID == id {
			return &rooms[i]
		}
	}
	return nil
}

// RoomName resolves a room id to its display name, falling back to the id
// itself for ids not present in the catalog.
func RoomName(id string) string {
	if r := RoomByID(id); r != nil {
		return r.Name
	}
	return id
}

// FindSKU locates a SKU by id across all rooms and returns it together with
// its owning room. Both are nil when the id is unknown.
func FindSKU(id string) (*SKU, *Room) {
	for i := range rooms {
		for j := range rooms[i].SKUs {
			if rooms[i].SKUs[j].ID == id {
				return &rooms[i].SKUs[j], &rooms[i]
			}
		}
	}
	return nil, nil
}

// IssueKinds returns the defect categories in their fixed enumeration order.
func IssueKinds() []IssueKind {
	return issueKinds
}
