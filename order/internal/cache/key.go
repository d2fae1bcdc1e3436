package cache

const KeyOrder = "order:%s"
