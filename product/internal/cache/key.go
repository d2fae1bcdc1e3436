package cache

const KeyProduct = "product:%s"
